// Package signin defines the Azure Entra ID sign-in document and builds it.
//
// Field names and nesting follow the Elastic azure.signinlogs integration so
// the output can be bulk-indexed next to real data. Struct field order is the
// serialized key order.
package signin

import (
	"fmt"
	"time"
)

// TimestampLayout renders UTC times with an explicit +00:00 offset.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// Event actions.
const (
	ActionSignIn       = "Sign-in activity"
	ActionTokenRefresh = "tokenRefresh"
)

// Risk values.
const (
	RiskNone        = "none"
	RiskAnonymousIP = "anonymousIP"
)

// Event is one sign-in or token refresh document.
type Event struct {
	Timestamp string     `json:"@timestamp"`
	Azure     Azure      `json:"azure"`
	Client    Client     `json:"client"`
	Cloud     Cloud      `json:"cloud"`
	ECS       ECS        `json:"ecs"`
	Event     EventMeta  `json:"event"`
	Geo       Geo        `json:"geo"`
	Source    Source     `json:"source"`
	User      UserRecord `json:"user"`
}

type Azure struct {
	CorrelationID string     `json:"correlation_id"`
	Resource      Resource   `json:"resource"`
	SignInLogs    SignInLogs `json:"signinlogs"`
	TenantID      string     `json:"tenant_id"`
}

type Resource struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

type SignInLogs struct {
	Category         string     `json:"category"`
	Identity         string     `json:"identity"`
	OperationName    string     `json:"operation_name"`
	OperationVersion string     `json:"operation_version"`
	Properties       Properties `json:"properties"`
	ResultDesc       string     `json:"result_description"`
	ResultSignature  string     `json:"result_signature"`
	ResultType       string     `json:"result_type"`
}

type Properties struct {
	AppDisplayName          string       `json:"app_display_name"`
	AppID                   string       `json:"app_id"`
	ClientAppUsed           string       `json:"client_app_used"`
	ConditionalAccessStatus string       `json:"conditional_access_status"`
	CorrelationID           string       `json:"correlation_id"`
	CreatedAt               string       `json:"created_at"`
	DeviceDetail            DeviceDetail `json:"device_detail"`
	ID                      string       `json:"id"`
	IsInteractive           bool         `json:"is_interactive"`
	OriginalRequestID       string       `json:"original_request_id"`
	ProcessingTimeMS        int          `json:"processing_time_ms"`
	RiskDetail              string       `json:"risk_detail"`
	RiskLevelAggregated     string       `json:"risk_level_aggregated"`
	RiskLevelDuringSignIn   string       `json:"risk_level_during_signin"`
	RiskState               string       `json:"risk_state"`
	Status                  Status       `json:"status"`
	TokenIssuerType         string       `json:"token_issuer_type"`
	UserDisplayName         string       `json:"user_display_name"`
	UserID                  string       `json:"user_id"`
	UserPrincipalName       string       `json:"user_principal_name"`
	MFADetail               *MFADetail   `json:"mfaDetail,omitempty"`
}

type DeviceDetail struct {
	Browser         string `json:"browser"`
	DeviceID        string `json:"device_id"`
	OperatingSystem string `json:"operating_system"`
}

type Status struct {
	ErrorCode int `json:"error_code"`
}

type MFADetail struct {
	Method string `json:"method"`
}

type Client struct {
	IP string `json:"ip"`
}

type Cloud struct {
	Provider string `json:"provider"`
}

type ECS struct {
	Version string `json:"version"`
}

type EventMeta struct {
	Action   string   `json:"action"`
	Category []string `json:"category"`
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Outcome  string   `json:"outcome"`
	Type     []string `json:"type"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Geo struct {
	CityName       string   `json:"city_name"`
	CountryISOCode string   `json:"country_iso_code"`
	Location       GeoPoint `json:"location"`
}

type SourceGeo struct {
	CountryISOCode string   `json:"country_iso_code"`
	Location       GeoPoint `json:"location"`
}

type Source struct {
	IP  string    `json:"ip"`
	Geo SourceGeo `json:"geo"`
}

type UserRecord struct {
	Domain   string `json:"domain"`
	FullName string `json:"full_name"`
	ID       string `json:"id"`
	Name     string `json:"name"`
}

// Time parses the document timestamp.
func (e *Event) Time() (time.Time, error) {
	t, err := time.Parse(TimestampLayout, e.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse @timestamp %q: %w", e.Timestamp, err)
	}
	return t, nil
}

// SessionID is the correlation value shared by a login and its refreshes.
func (e *Event) SessionID() string {
	return e.Azure.SignInLogs.Properties.AppID
}

// IsRefresh reports whether the event is a silent token refresh.
func (e *Event) IsRefresh() bool {
	return !e.Azure.SignInLogs.Properties.IsInteractive
}

// IsAnomalous reports whether the event carries the anonymous-IP marker.
func (e *Event) IsAnomalous() bool {
	return e.Azure.SignInLogs.Properties.RiskDetail == RiskAnonymousIP
}

// HasMFA reports whether MFA detail is present.
func (e *Event) HasMFA() bool {
	return e.Azure.SignInLogs.Properties.MFADetail != nil
}
