package mail

import (
	"context"
	"errors"
	"log"

	"github.com/xavierca1/imersao-crm/internal/entity"
)

// Notifier tells a seller that a stale lead was moved to them, by email and WhatsApp
// when each channel is available.
type Notifier struct {
	Email    *EmailSender
	WhatsApp *WhatsAppSender
}

func NewNotifier(email *EmailSender, whatsApp *WhatsAppSender) *Notifier {
	return &Notifier{Email: email, WhatsApp: whatsApp}
}

func (n *Notifier) NotifyReassignment(ctx context.Context, seller entity.TeamMember, lead entity.Lead, previousOwner string) error {
	var errs []error

	if n.Email.Configured() && seller.Email != "" {
		err := n.Email.SendReassignment(seller.Email, ReassignmentEmailData{
			SellerName:    seller.Name,
			LeadName:      lead.Name,
			LeadPhone:     lead.Phone,
			Status:        lead.Status.Label(),
			PreviousOwner: previousOwner,
		})
		if err != nil {
			log.Printf("⚠️ Email: Falha ao avisar %s: %v", seller.Email, err)
			errs = append(errs, err)
		}
	}

	if n.WhatsApp != nil && seller.Phone != "" {
		if err := n.WhatsApp.SendReassignment(ctx, seller.Phone, seller.Name, lead.Name, lead.Phone); err != nil {
			log.Printf("⚠️ WhatsApp: Falha ao avisar %s: %v", seller.Name, err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// InternationalPhone prefixes Brazilian numbers with the country code.
func InternationalPhone(phone string) string {
	digits := entity.NormalizePhone(phone)
	if len(digits) == 10 || len(digits) == 11 {
		return "55" + digits
	}
	return digits
}
