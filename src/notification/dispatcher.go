package notification

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/smtp"
	"text/template"

	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	"github.com/mattjboland/boutique-ado/src/shared/infrastructure/metrics"
)

var confirmationSubject = template.Must(template.New("subject").Parse(
	"Boutique Ado Confirmation for Order Number {{.OrderNumber}}",
))

var confirmationBody = template.Must(template.New("body").Parse(
	`Hello {{.FullName}}!

This is a confirmation of your order at Boutique Ado. Your order information is below:

Order Number: {{.OrderNumber}}
Order Date: {{.Date.Format "2006-01-02 15:04"}}

Order Total: ${{.OrderTotal.StringFixed 2}}
Delivery: ${{.DeliveryCost.StringFixed 2}}
Grand Total: ${{.GrandTotal.StringFixed 2}}

Your order will be shipped to {{.StreetAddress1}} in {{.TownOrCity}}, {{.Country}}.

We've got your phone number on file as {{.PhoneNumber}}.

If you have any questions, feel free to contact us at {{.From}}.

Thank you for your order!

Sincerely,

Boutique Ado
`))

type confirmationData struct {
	*entity.Order
	From string
}

// SMTPConfig contiene la configuración del servidor de correo saliente.
// Con Host vacío el dispatcher trabaja en modo consola: el correo se
// imprime en el log en lugar de enviarse.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// EmailDispatcher envía la confirmación de una orden por correo y publica
// el evento de orden confirmada en el broker. Implementa OrderNotifier.
type EmailDispatcher struct {
	smtp            SMTPConfig
	publisher       *EventPublisher
	checkoutMetrics *metrics.CheckoutMetrics
}

// NewEmailDispatcher crea el dispatcher de confirmaciones; el registro de
// métricas es opcional
func NewEmailDispatcher(smtpConfig SMTPConfig, publisher *EventPublisher, checkoutMetrics *metrics.CheckoutMetrics) *EmailDispatcher {
	return &EmailDispatcher{
		smtp:            smtpConfig,
		publisher:       publisher,
		checkoutMetrics: checkoutMetrics,
	}
}

// SendConfirmation renderiza y envía el correo de confirmación.
// El evento al broker es best-effort: su fallo no reporta error porque la
// confirmación al cliente ya salió.
func (d *EmailDispatcher) SendConfirmation(ctx context.Context, order *entity.Order) error {
	data := confirmationData{Order: order, From: d.smtp.From}

	var subject bytes.Buffer
	if err := confirmationSubject.Execute(&subject, data); err != nil {
		return fmt.Errorf("error rendering confirmation subject: %w", err)
	}

	var body bytes.Buffer
	if err := confirmationBody.Execute(&body, data); err != nil {
		return fmt.Errorf("error rendering confirmation body: %w", err)
	}

	if err := d.send(order.Email, subject.String(), body.String()); err != nil {
		d.countConfirmation("failed")
		return err
	}
	d.countConfirmation("sent")

	if d.publisher != nil {
		if err := d.publisher.PublishOrderConfirmed(ctx, order); err != nil {
			log.Printf("⚠️ Error publishing order confirmed event for %s: %v", order.OrderNumber, err)
		}
	}

	return nil
}

func (d *EmailDispatcher) countConfirmation(result string) {
	if d.checkoutMetrics != nil {
		d.checkoutMetrics.Confirmations.WithLabelValues(result).Inc()
	}
}

// send entrega el correo por SMTP, o lo vuelca al log en modo consola
func (d *EmailDispatcher) send(to, subject, body string) error {
	if d.smtp.Host == "" {
		log.Printf("📧 [console mail] To: %s | Subject: %s\n%s", to, subject, body)
		return nil
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", d.smtp.From, to, subject, body))

	addr := d.smtp.Host + ":" + d.smtp.Port
	var auth smtp.Auth
	if d.smtp.Username != "" {
		auth = smtp.PlainAuth("", d.smtp.Username, d.smtp.Password, d.smtp.Host)
	}

	if err := smtp.SendMail(addr, auth, d.smtp.From, []string{to}, msg); err != nil {
		return fmt.Errorf("error sending confirmation email to %s: %w", to, err)
	}

	return nil
}
