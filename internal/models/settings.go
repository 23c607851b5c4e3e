package models

import "time"

// SiteSettings vit dans un document unique (_id "site") de la collection
// settings. L'ancienne application gardait cet objet en mémoire et le
// perdait à chaque redémarrage.
type SiteSettings struct {
	ID           string    `bson:"_id" json:"-"`
	SiteName     string    `bson:"siteName" json:"site_name"`
	ContactEmail string    `bson:"contactEmail" json:"contact_email"`
	Announcement string    `bson:"announcement,omitempty" json:"announcement,omitempty"`
	OrdersOpen   bool      `bson:"ordersOpen" json:"orders_open"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updated_at"`
}

const SiteSettingsID = "site"
