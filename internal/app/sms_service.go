package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fishcare_notifier/internal/domain/sms"
	"fishcare_notifier/internal/domain/user"
	idb "fishcare_notifier/internal/infra/database"

	"github.com/sirupsen/logrus"
)

var ErrPhoneRequired = errors.New("phone number required, configure one in the profile or pass it explicitly")
var ErrMessageRequired = errors.New("missing required field: message")

// SMSService sends ad-hoc messages to a user.
type SMSService struct {
	userRepo     user.Repository
	gateway      sms.Gateway
	defaultPhone string
	logger       *logrus.Entry
}

func NewSMSService(ur user.Repository, gw sms.Gateway, defaultPhone string, logger *logrus.Entry) *SMSService {
	return &SMSService{
		userRepo:     ur,
		gateway:      gw,
		defaultPhone: strings.TrimSpace(defaultPhone),
		logger:       logger,
	}
}

// SendToUser delivers message to phone, or when phone is empty to the user's
// profile number, then to the configured default. It returns the number used.
func (s *SMSService) SendToUser(ctx context.Context, userID int64, phone, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrMessageRequired
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		phone = s.lookupPhone(ctx, userID)
	}
	if phone == "" {
		return "", ErrPhoneRequired
	}

	log := s.logger.WithFields(logrus.Fields{"user_id": userID, "phone": sms.MaskPhone(phone)})
	if err := s.gateway.Send(ctx, phone, message); err != nil {
		log.WithError(err).Error("Manual SMS failed")
		return phone, fmt.Errorf("failed to send SMS: %w", err)
	}
	log.Info("Manual SMS sent")
	return phone, nil
}

// lookupPhone falls back to the default number when the profile lookup fails.
func (s *SMSService) lookupPhone(ctx context.Context, userID int64) string {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, idb.ErrUserNotFound) {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Error fetching user phone number")
		}
		return s.defaultPhone
	}
	if u.PhoneNumber.Valid && strings.TrimSpace(u.PhoneNumber.String) != "" {
		return strings.TrimSpace(u.PhoneNumber.String)
	}
	return s.defaultPhone
}
