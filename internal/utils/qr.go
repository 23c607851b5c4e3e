package utils

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// GeneratePaymentQR encode la référence de paiement en QR base64, prêt à
// mettre dans un <img src="..."> du mail de facture.
func GeneratePaymentQR(paymentID string, amount float64) (string, error) {
	payload := fmt.Sprintf("BIBLIO|%s|EUR%.2f", paymentID, amount)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// GeneratePickupQR encode l'identifiant d'une demande de livraison approuvée
// en PNG, scanné au comptoir lors du retrait.
func GeneratePickupQR(requestID string) ([]byte, error) {
	return qrcode.Encode("BIBLIO-PICKUP|"+requestID, qrcode.Medium, 256)
}
