package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// sealPhones returns the phone values to persist for a and whether they were encrypted.
func (s *SQLiteStore) sealPhones(a Appointment) (string, string, bool, error) {
	if len(s.EncryptionKey) == 0 {
		return a.PatientPhone, a.DoctorPhone, false, nil
	}

	patient, err := s.encrypt([]byte(a.PatientPhone))
	if err != nil {
		return "", "", false, fmt.Errorf("patient phone encryption failed: %w", err)
	}

	doctor, err := s.encrypt([]byte(a.DoctorPhone))
	if err != nil {
		return "", "", false, fmt.Errorf("doctor phone encryption failed: %w", err)
	}

	return patient, doctor, true, nil
}

// openPhones decrypts the phone numbers of a in place.
func (s *SQLiteStore) openPhones(a *Appointment) error {
	patient, err := s.decrypt(a.PatientPhone)
	if err != nil {
		return fmt.Errorf("patient phone decryption failed: %w", err)
	}

	doctor, err := s.decrypt(a.DoctorPhone)
	if err != nil {
		return fmt.Errorf("doctor phone decryption failed: %w", err)
	}

	a.PatientPhone = string(patient)
	a.DoctorPhone = string(doctor)

	return nil
}

// aead returns the AES-GCM cipher for the configured key.
func (s *SQLiteStore) aead() (cipher.AEAD, error) {
	if len(s.EncryptionKey) == 0 {
		return nil, errors.New("encryption key not configured")
	}

	block, err := aes.NewCipher(s.EncryptionKey)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

func (s *SQLiteStore) encrypt(plaintext []byte) (string, error) {
	gcm, err := s.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())

	_, err = io.ReadFull(rand.Reader, nonce)
	if err != nil {
		return "", err
	}

	// Result is nonce + ciphertext
	return base64.StdEncoding.EncodeToString(gcm.Seal(nonce, nonce, plaintext, nil)), nil
}

func (s *SQLiteStore) decrypt(cryptoText string) ([]byte, error) {
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(cryptoText)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]

	return gcm.Open(nil, nonce, ciphertext, nil)
}
