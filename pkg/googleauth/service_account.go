package googleauth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ServiceAccount is the subset of a Google service account key file the
// dispatcher needs.
type ServiceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`

	raw []byte
}

// DecodeServiceAccount parses a base64-encoded service account JSON blob.
func DecodeServiceAccount(b64 string) (*ServiceAccount, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, fmt.Errorf("decode service account: %w", err)
	}
	return ParseServiceAccount(data)
}

// ParseServiceAccount parses a service account JSON document.
func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	switch {
	case sa.ClientEmail == "":
		return nil, errors.New("service account: client_email is required")
	case sa.PrivateKey == "":
		return nil, errors.New("service account: private_key is required")
	case sa.ProjectID == "":
		return nil, errors.New("service account: project_id is required")
	}
	sa.raw = data
	return &sa, nil
}

// JSON returns the original key file, for clients that take credentials JSON.
func (sa *ServiceAccount) JSON() []byte {
	return sa.raw
}
