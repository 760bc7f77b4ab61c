package mail

import (
	"context"
	"log"

	"github.com/xavierca1/imersao-crm/internal/infra/integration/whatsapp"
)

type messageSender interface {
	SendMessage(ctx context.Context, input whatsapp.SendMessageInput) error
}

type WhatsAppSender struct {
	client       messageSender
	templateName string
}

func NewWhatsAppSender(client messageSender, templateName string) *WhatsAppSender {
	return &WhatsAppSender{
		client:       client,
		templateName: templateName,
	}
}

// SendReassignment avisa o vendedor pelo template aprovado: {{1}} vendedor, {{2}} lead, {{3}} telefone do lead.
func (s *WhatsAppSender) SendReassignment(ctx context.Context, phone, sellerName, leadName, leadPhone string) error {
	if phone == "" || sellerName == "" || leadName == "" {
		log.Printf("⚠️ WhatsApp: Dados incompletos para envio (phone: %s, seller: %s, lead: %s)", phone, sellerName, leadName)
		return nil
	}

	return s.client.SendMessage(ctx, whatsapp.SendMessageInput{
		PhoneNumber:  InternationalPhone(phone),
		TemplateName: s.templateName,
		Parameters:   []string{sellerName, leadName, leadPhone},
	})
}
