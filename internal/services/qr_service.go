package services

import (
	"context"
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultQrSize = 256

// QrService renders scan URLs as PNG images. Low error correction keeps the
// modules large enough to scan from a printed plate label.
type QrService struct {
	size int
}

func NewQrService(size int) (*QrService, error) {
	if size == 0 {
		size = defaultQrSize
	}
	if size < 0 {
		return nil, errors.New("qr size must be positive")
	}

	return &QrService{size: size}, nil
}

func (s *QrService) Render(ctx context.Context, payload string) ([]byte, error) {
	if s == nil {
		return nil, errors.New("qr service is nil")
	}
	if payload == "" {
		return nil, errors.New("qr payload is empty")
	}
	_ = ctx

	image, err := qrcode.Encode(payload, qrcode.Low, s.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	return image, nil
}
