package entities

import (
	"fmt"
	"strings"
)

// AccountRecord is one account's credentials and mutable session state as stored on disk.
// Only the recognized fields below survive a rewrite.
type AccountRecord struct {
	Phone         string `json:"phone"`
	TwoFA         string `json:"twoFA,omitempty"`
	AppID         int    `json:"app_id"`
	AppHash       string `json:"app_hash"`
	Device        string `json:"device"`
	AppVersion    string `json:"app_version"`
	PhoneCode     string `json:"phone_code,omitempty"`
	PhoneCodeHash string `json:"phone_code_hash,omitempty"`
	SessionString string `json:"session_string,omitempty"`
}

// Validate checks the required fields of the record
func (r *AccountRecord) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Phone) == "" {
		missing = append(missing, "phone")
	}
	if r.AppID == 0 {
		missing = append(missing, "app_id")
	}
	if r.AppHash == "" {
		missing = append(missing, "app_hash")
	}
	if r.Device == "" {
		missing = append(missing, "device")
	}
	if r.AppVersion == "" {
		missing = append(missing, "app_version")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// HasSession reports whether a stored session token is present
func (r *AccountRecord) HasSession() bool {
	return r.SessionString != ""
}

// HasCode reports whether a usable sign-in code was supplied.
// A code is only usable together with the phone_code_hash of the request that produced it.
func (r *AccountRecord) HasCode() bool {
	return r.PhoneCode != "" && r.PhoneCodeHash != ""
}

// HasTwoFA reports whether a two-factor secret was supplied
func (r *AccountRecord) HasTwoFA() bool {
	return r.TwoFA != ""
}
