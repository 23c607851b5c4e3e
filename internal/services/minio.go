package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"time"

	"biblio_back_end/internal/database"

	"github.com/minio/minio-go/v7"
)

func coversBucket() string {
	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "covers"
	}
	return bucket
}

// UploadCover stocke la couverture d'un livre dans MinIO et retourne l'URL
// publique. L'objet est nommé d'après l'identifiant du livre : un nouvel
// upload remplace l'ancien.
func UploadCover(bookID string, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	bucket := coversBucket()
	objectName := "book-" + bookID

	_, err = database.MinIO.PutObject(context.Background(), bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s/%s/%s", os.Getenv("MINIO_ENDPOINT"), bucket, objectName), nil
}

// CoverSignedURL retourne une URL présignée de lecture, valable une heure.
func CoverSignedURL(bookID string) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}

	signed, err := database.MinIO.PresignedGetObject(context.Background(),
		coversBucket(), "book-"+bookID, time.Hour, url.Values{})
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}
