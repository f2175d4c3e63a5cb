// Package session is the single persistence boundary for client-side state:
// the auth token plus the UX caches that must survive restarts (the set of
// orders an OTP was already sent for, saved medicines). Nothing in here is
// authoritative; the backend owns every entity.
package session

import (
	"encoding/json"
	"os"
	"sync"
)

type sessionData struct {
	Token          string   `json:"token"`
	Role           string   `json:"role"`
	Email          string   `json:"email"`
	OTPSentOrders  []string `json:"otp_sent_orders"`
	SavedMedicines []int    `json:"saved_medicines"`
}

type Session struct {
	filePath string
	mu       sync.Mutex
	data     *sessionData
}

func NewFileSession(filePath string) (*Session, error) {
	s := &Session{
		filePath: filePath,
		data:     &sessionData{},
	}
	return s, s.load()
}

func (s *Session) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(s.data)
}

// save must be called with s.mu held.
func (s *Session) save() error {
	file, err := os.Create(s.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s.data)
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Token
}

func (s *Session) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Role
}

func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Email
}

func (s *Session) SetCredentials(token, role, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = token
	s.data.Role = role
	s.data.Email = email
	return s.save()
}

// Invalidate drops the credentials. Called on HTTP 401; the UX caches stay
// so a re-login does not forget which orders already got an OTP.
func (s *Session) Invalidate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Token = ""
	s.data.Role = ""
	s.data.Email = ""
	return s.save()
}

// OTPSent reports whether an OTP was already requested for orderID in some
// earlier run. Used to render "resend" instead of "send"; never consulted
// for correctness.
func (s *Session) OTPSent(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.data.OTPSentOrders {
		if id == orderID {
			return true
		}
	}
	return false
}

func (s *Session) MarkOTPSent(orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.data.OTPSentOrders {
		if id == orderID {
			return nil
		}
	}
	s.data.OTPSentOrders = append(s.data.OTPSentOrders, orderID)
	return s.save()
}

func (s *Session) ClearOTPSent(orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range s.data.OTPSentOrders {
		if id == orderID {
			s.data.OTPSentOrders = append(s.data.OTPSentOrders[:i], s.data.OTPSentOrders[i+1:]...)
			return s.save()
		}
	}
	return nil
}

func (s *Session) SaveMedicine(medicineID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.data.SavedMedicines {
		if id == medicineID {
			return nil
		}
	}
	s.data.SavedMedicines = append(s.data.SavedMedicines, medicineID)
	return s.save()
}

func (s *Session) UnsaveMedicine(medicineID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range s.data.SavedMedicines {
		if id == medicineID {
			s.data.SavedMedicines = append(s.data.SavedMedicines[:i], s.data.SavedMedicines[i+1:]...)
			return s.save()
		}
	}
	return nil
}

func (s *Session) SavedMedicines() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.data.SavedMedicines))
	copy(out, s.data.SavedMedicines)
	return out
}
