package profile

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	ErrUserRequired = errors.New("user is required")
	ErrInvalidPhone = errors.New("phone must contain 7 to 15 digits")
	ErrInvalidPhoto = errors.New("photo url must be an absolute http(s) url")
	ErrHolderEmpty  = errors.New("card holder is required")
)

// PayOnDelivery labels orders placed without a saved card.
const PayOnDelivery = "Pay on delivery"

type Service struct {
	repo Repository
	log  logrus.FieldLogger
}

func NewService(repo Repository, log logrus.FieldLogger) *Service {
	return &Service{
		repo: repo,
		log:  log.WithField("component", "profile"),
	}
}

// Get returns the user's profile, or an empty one if nothing was saved yet.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	p, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return &Profile{UserID: userID}, nil
	}
	return p, err
}

type Update struct {
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	PhotoURL    string `json:"photo_url"`
}

func (s *Service) Update(ctx context.Context, userID string, u Update) (*Profile, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	p := &Profile{
		UserID:      userID,
		DisplayName: strings.TrimSpace(u.DisplayName),
		Phone:       strings.TrimSpace(u.Phone),
		Address:     strings.TrimSpace(u.Address),
		PhotoURL:    strings.TrimSpace(u.PhotoURL),
	}

	if err := validatePhone(p.Phone); err != nil {
		return nil, err
	}
	if err := validatePhoto(p.PhotoURL); err != nil {
		return nil, err
	}

	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	digits := 0
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return ErrInvalidPhone
		}
	}
	if digits < 7 || digits > 15 {
		return ErrInvalidPhone
	}
	return nil
}

func validatePhoto(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidPhoto
	}
	return nil
}

// --------------------------------------------------
// Payment preference
// --------------------------------------------------

type CardInput struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
}

func (s *Service) Payment(ctx context.Context, userID string) (*PaymentPreference, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.repo.GetPayment(ctx, userID)
}

// SetPayment validates the card and stores only its brand and last four
// digits. The full number never leaves this function.
func (s *Service) SetPayment(ctx context.Context, userID string, in CardInput) (*PaymentPreference, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	holder := strings.TrimSpace(in.Holder)
	if holder == "" {
		return nil, ErrHolderEmpty
	}

	digits, err := normalizeCard(in.Number)
	if err != nil {
		return nil, err
	}

	pref := &PaymentPreference{
		UserID: userID,
		Brand:  cardBrand(digits),
		Last4:  digits[len(digits)-4:],
		Holder: holder,
	}
	if err := s.repo.SavePayment(ctx, pref); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"brand":   pref.Brand,
	}).Info("payment preference updated")

	return pref, nil
}

// PaymentLabel describes how an order will be paid for.
func (s *Service) PaymentLabel(ctx context.Context, userID string) (string, error) {
	pref, err := s.Payment(ctx, userID)
	if errors.Is(err, ErrNoPayment) {
		return PayOnDelivery, nil
	}
	if err != nil {
		return "", err
	}
	return pref.Label(), nil
}
