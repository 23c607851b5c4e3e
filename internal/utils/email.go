package utils

import (
	"fmt"
	"log"
	"os"

	"biblio_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

// SendInvoiceEmail envoie le reçu de paiement. Toujours appelé en best
// effort : un mail qui échoue ne doit jamais faire échouer le paiement.
func SendInvoiceEmail(invoice models.Invoice) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return fmt.Errorf("SMTP_HOST non configuré")
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@biblio.example"
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(invoice.Email); err != nil {
		return err
	}
	msg.Subject(fmt.Sprintf("Votre reçu — %s", invoice.BookTitle))
	msg.SetBodyString(mail.TypeTextHTML, GenerateInvoiceHTML(invoice))

	client, err := mail.NewClient(host,
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi du reçu à", invoice.Email)
	return client.DialAndSend(msg)
}

// GenerateInvoiceHTML génère le corps HTML du reçu, QR de la référence de
// paiement inclus.
func GenerateInvoiceHTML(invoice models.Invoice) string {
	qr, err := GeneratePaymentQR(invoice.PaymentID, invoice.Price)
	if err != nil {
		qr = ""
	}

	qrBlock := ""
	if qr != "" {
		qrBlock = fmt.Sprintf(`<p style="text-align:center;"><img src="%s" alt="QR paiement" width="160"/></p>`, qr)
	}

	name := invoice.UserName
	if name == "" {
		name = invoice.Email
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Reçu de paiement</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Reçu de paiement</h2>
		<p>Bonjour %s,</p>
		<p>Votre paiement pour <strong>%s</strong> a bien été enregistré.</p>
		<table style="width:100%%; border-collapse: collapse;">
			<tr><td style="padding:6px 0;">Montant</td><td style="text-align:right;">%.2f€</td></tr>
			<tr><td style="padding:6px 0;">Référence</td><td style="text-align:right;">%s</td></tr>
			<tr><td style="padding:6px 0;">Commandé le</td><td style="text-align:right;">%s</td></tr>
			<tr><td style="padding:6px 0;">Payé le</td><td style="text-align:right;">%s</td></tr>
		</table>
		%s
		<p style="color:#888; font-size:12px;">Ce reçu n'est plus modifiable. Conservez-le.</p>
	</div>
</body>
</html>`,
		name, invoice.BookTitle, invoice.Price, invoice.PaymentID,
		invoice.OrderDate.Format("02/01/2006"), invoice.PaidAt.Format("02/01/2006 15:04"),
		qrBlock)
}
