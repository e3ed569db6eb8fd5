package config

import (
	"encoding/base64"
	"fmt"
)

type Config struct {
	ServerAddr     string
	DataFile       string
	SigningKey     []byte
	AllowedOrigins []string
	UploadDir      string
	ClipDir        string
	PhotoDir       string
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

func NewConfig(serverAddr, dataFile, base64Secret string, allowedOrigins []string, uploadDir, clipDir, photoDir string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if dataFile == "" {
		return nil, fmt.Errorf("data file path cannot be empty")
	}
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}
	if uploadDir == "" || clipDir == "" || photoDir == "" {
		return nil, fmt.Errorf("media directories cannot be empty")
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		ServerAddr:     serverAddr,
		DataFile:       dataFile,
		SigningKey:     signingKey,
		AllowedOrigins: allowedOrigins,
		UploadDir:      uploadDir,
		ClipDir:        clipDir,
		PhotoDir:       photoDir,
	}, nil
}
