package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"gigmatch/internal/models"
	"gigmatch/internal/repository"
)

// NotificationService persists inbox notifications and fires FCM pushes.
// Every call is fire-and-forget from the caller's perspective: failures are
// logged and swallowed, never propagated into the triggering operation.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body, deepLink string, data map[string]interface{}) {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Body:     body,
		DeepLink: deepLink,
		Data:     dataJSON,
	})
	if err != nil {
		log.Printf("[notify] persist failed for user %d: %v", userID, err)
	}
	s.sendPush(userID, notifType, title, body, data)
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

func (s *NotificationService) NotifyMatchCreated(userID, matchID uint, counterpartName string) {
	s.Notify(userID, "MATCH_CREATED", "It's a match",
		"You matched with "+counterpartName,
		fmt.Sprintf("/matches/%d", matchID),
		map[string]interface{}{"match_id": matchID})
}

func (s *NotificationService) NotifyApplicationReceived(venueUserID, gigID, applicationID uint, performerName string) {
	s.Notify(venueUserID, "APPLICATION_RECEIVED", "New application",
		performerName+" applied to your gig",
		fmt.Sprintf("/gigs/%d/applications", gigID),
		map[string]interface{}{"gig_id": gigID, "application_id": applicationID})
}

func (s *NotificationService) NotifyBookingCreated(performerUserID, bookingID uint, venueName string) {
	s.Notify(performerUserID, "BOOKING_CREATED", "You're booked",
		venueName+" accepted your application",
		fmt.Sprintf("/bookings/%d", bookingID),
		map[string]interface{}{"booking_id": bookingID})
}

func (s *NotificationService) NotifyBookingConfirmed(userID, bookingID uint) {
	s.Notify(userID, "BOOKING_CONFIRMED", "Booking confirmed",
		"Both parties confirmed the booking",
		fmt.Sprintf("/bookings/%d", bookingID),
		map[string]interface{}{"booking_id": bookingID})
}

func (s *NotificationService) NotifyPaymentReceived(userID, bookingID uint, amountCents int64) {
	s.Notify(userID, "PAYMENT_RECEIVED", "Payment received",
		"A payment on your booking was confirmed",
		fmt.Sprintf("/bookings/%d", bookingID),
		map[string]interface{}{"booking_id": bookingID, "amount_cents": amountCents})
}

func (s *NotificationService) NotifyBookingCancelled(userID, bookingID uint, reason string) {
	s.Notify(userID, "BOOKING_CANCELLED", "Booking cancelled",
		"The booking was cancelled: "+reason,
		fmt.Sprintf("/bookings/%d", bookingID),
		map[string]interface{}{"booking_id": bookingID})
}

// NotifyReviewPrompt schedules the post-completion review nudge for a party.
func (s *NotificationService) NotifyReviewPrompt(userID, bookingID uint) {
	s.Notify(userID, "REVIEW_PROMPT", "How did it go?",
		"Leave a review for your completed booking",
		fmt.Sprintf("/bookings/%d/review", bookingID),
		map[string]interface{}{"booking_id": bookingID})
}
