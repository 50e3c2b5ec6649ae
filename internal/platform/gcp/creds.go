package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

type Config struct {
	Bucket string
	Prefix string
	// Credentials is a JSON blob or a path to a service-account file.
	Credentials string
	// EmulatorHost points at fake-gcs-server for local runs.
	EmulatorHost string
}

func clientOptions(cfg Config) []option.ClientOption {
	if host := strings.TrimSpace(cfg.EmulatorHost); host != "" {
		return []option.ClientOption{
			option.WithoutAuthentication(),
			option.WithEndpoint(strings.TrimRight(host, "/") + "/storage/v1/"),
		}
	}
	creds := strings.TrimSpace(cfg.Credentials)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}
