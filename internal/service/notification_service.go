package service

import (
	"context"
	"encoding/json"
	"fmt"

	"lcfauto/internal/models"
	"lcfauto/internal/repository"
)

// streamer pushes payloads to connected websocket clients. Satisfied by
// ws.Hub; may be nil.
type streamer interface {
	BroadcastToUser(userID uint, payload interface{})
}

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
	stream   streamer
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService, stream streamer) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm, stream: stream}
}

// Notify persists the notification, then fans out to FCM and the websocket
// stream. Delivery failures never fail the originating operation.
func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}
	if err := s.repo.Create(n); err != nil {
		return err
	}
	s.sendPush(userID, notifType, title, body, data)
	if s.stream != nil {
		s.stream.BroadcastToUser(userID, n)
	}
	return nil
}

func (s *NotificationService) sendPush(userID uint, notifType, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u == nil || u.FCMToken == "" {
		return
	}
	_ = s.fcm.SendToUser(context.Background(), u.FCMToken, notifType, title, body, data)
}

func (s *NotificationService) NotifyAppointmentConfirmed(userID, appointmentID uint) error {
	return s.Notify(userID, "APPOINTMENT_CONFIRMED", "Rendez-vous confirmé",
		"Votre rendez-vous a été confirmé par le garage.",
		map[string]interface{}{"appointment_id": appointmentID})
}

func (s *NotificationService) NotifyAppointmentCompleted(userID, appointmentID uint) error {
	return s.Notify(userID, "APPOINTMENT_COMPLETED", "Intervention terminée",
		"Votre véhicule est prêt. Merci de votre confiance !",
		map[string]interface{}{"appointment_id": appointmentID})
}

func (s *NotificationService) NotifyQuoteSent(userID uint, number string) error {
	return s.Notify(userID, "QUOTE_SENT", "Nouveau devis",
		"Votre devis "+number+" est disponible.",
		map[string]interface{}{"number": number})
}

func (s *NotificationService) NotifyInvoiceIssued(userID uint, number string, totalCents int64) error {
	return s.Notify(userID, "INVOICE_ISSUED", "Nouvelle facture",
		fmt.Sprintf("Votre facture %s (%.2f €) est disponible.", number, float64(totalCents)/100),
		map[string]interface{}{"number": number, "total_cents": totalCents})
}

func (s *NotificationService) NotifyInvoicePaid(userID uint, number string) error {
	return s.Notify(userID, "INVOICE_PAID", "Paiement reçu",
		"Le règlement de la facture "+number+" a bien été enregistré.",
		map[string]interface{}{"number": number})
}

func (s *NotificationService) NotifyPointsCredited(userID uint, points int, description string) error {
	return s.Notify(userID, "LOYALTY_POINTS", "Points fidélité",
		fmt.Sprintf("+%d points : %s", points, description),
		map[string]interface{}{"points": points})
}
