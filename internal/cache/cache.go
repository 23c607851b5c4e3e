package cache

import (
	"context"
	"time"

	"biblio_back_end/internal/database"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

// Clés de cache applicatives.
const (
	KeyBooks       = "books:all"
	BooksTTL       = 5 * time.Minute
	WishlistPrefix = "wishlist:"
	WishlistTTL    = 10 * time.Minute
)

// Get récupère une valeur du cache. Chaîne vide si Redis est absent ou ne
// connaît pas la clé : le cache est toujours optionnel.
func Get(key string) string {
	if database.Redis == nil {
		return ""
	}
	val, err := database.Redis.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return val
}

// Set stocke une valeur, sans bruit si Redis est absent.
func Set(key string, value interface{}, ttl time.Duration) {
	if database.Redis == nil {
		return
	}
	database.Redis.Set(ctx, key, value, ttl)
}

// Delete invalide une clé.
func Delete(key string) {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(ctx, key)
}

// IncrWindow incrémente un compteur à fenêtre fixe (rate limiting) et
// retourne sa valeur courante.
func IncrWindow(key string, window time.Duration) (int64, error) {
	if database.Redis == nil {
		return 0, redis.Nil
	}
	pipe := database.Redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
