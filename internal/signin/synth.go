package signin

import (
	"net/netip"
	"strings"
	"time"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/geo"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/population"
	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/internal/random"
)

// DefaultMFARate is the share of interactive logins that require MFA.
const DefaultMFARate = 0.30

// deviceIDRate is the share of events that report a device id.
const deviceIDRate = 0.70

const (
	appDisplayName = "Office 365"
	provider       = "Microsoft.aadiam"
	ecsVersion     = "8.11.0"
	mfaMethod      = "PhoneAppNotification"
)

// Cosmetic device and client fields; no consistency is required between them.
var (
	clientApps       = random.Uniform("Browser", "MobileApp", "Electron")
	browsers         = random.Uniform("Chrome", "Edge", "Firefox", "Safari")
	operatingSystems = random.Uniform("Windows 11", "macOS", "Android", "iOS")
)

// Params is everything one event depends on.
type Params struct {
	User      *population.User
	Location  *geo.Location
	Time      time.Time
	IP        netip.Addr
	Anomalous bool
	SessionID string
	Refresh   bool
}

// Synthesizer builds events. Its only side effect is drawing from Src.
type Synthesizer struct {
	Src     *random.Source
	MFARate float64
}

// NewSynthesizer returns a synthesizer using the default MFA rate.
func NewSynthesizer(src *random.Source) *Synthesizer {
	return &Synthesizer{Src: src, MFARate: DefaultMFARate}
}

// Build returns one fully populated event.
func (s *Synthesizer) Build(p Params) Event {
	logID := s.Src.UUID()
	ts := p.Time.UTC().Format(TimestampLayout)
	mfa := !p.Refresh && s.Src.Chance(s.MFARate)

	appID := p.SessionID
	if appID == "" {
		appID = logID
	}

	handle := p.User.Handle
	if handle == "" {
		handle, _, _ = strings.Cut(p.User.Email, "@")
	}

	props := Properties{
		AppDisplayName:          appDisplayName,
		AppID:                   appID,
		ClientAppUsed:           clientApps.Draw(s.Src),
		ConditionalAccessStatus: "notApplied",
		CorrelationID:           logID,
		CreatedAt:               ts,
		DeviceDetail: DeviceDetail{
			Browser:         browsers.Draw(s.Src),
			DeviceID:        s.deviceID(),
			OperatingSystem: operatingSystems.Draw(s.Src),
		},
		ID:                    logID,
		IsInteractive:         !p.Refresh,
		OriginalRequestID:     logID,
		ProcessingTimeMS:      s.Src.IntRange(120, 500),
		RiskDetail:            RiskNone,
		RiskLevelAggregated:   RiskNone,
		RiskLevelDuringSignIn: RiskNone,
		RiskState:             RiskNone,
		TokenIssuerType:       "AzureAD",
		UserDisplayName:       handle,
		UserID:                p.User.ID,
		UserPrincipalName:     p.User.Email,
	}
	if mfa {
		props.ConditionalAccessStatus = "success"
		props.MFADetail = &MFADetail{Method: mfaMethod}
	}
	// Aggregated and during-sign-in levels stay "none" on purpose: detections
	// have to key on risk_detail.
	if p.Anomalous {
		props.RiskDetail = RiskAnonymousIP
	}

	action := ActionSignIn
	if p.Refresh {
		action = ActionTokenRefresh
	}

	ip := p.IP.String()
	point := GeoPoint{Lat: p.Location.Lat, Lon: p.Location.Lon}

	return Event{
		Timestamp: ts,
		Azure: Azure{
			CorrelationID: logID,
			Resource: Resource{
				ID:       "/tenants/" + logID + "/providers/" + provider,
				Provider: provider,
			},
			SignInLogs: SignInLogs{
				Category:         "SignInLogs",
				Identity:         handle,
				OperationName:    ActionSignIn,
				OperationVersion: "1.0",
				Properties:       props,
				ResultDesc:       "Login succeeded",
				ResultSignature:  "None",
				ResultType:       "0",
			},
			TenantID: logID,
		},
		Client: Client{IP: ip},
		Cloud:  Cloud{Provider: "azure"},
		ECS:    ECS{Version: ecsVersion},
		Event: EventMeta{
			Action:   action,
			Category: []string{"authentication"},
			ID:       logID,
			Kind:     "event",
			Outcome:  "success",
			Type:     []string{"info"},
		},
		Geo: Geo{
			CityName:       p.Location.Name,
			CountryISOCode: p.Location.CountryCode,
			Location:       point,
		},
		Source: Source{
			IP: ip,
			Geo: SourceGeo{
				CountryISOCode: p.Location.CountryCode,
				Location:       point,
			},
		},
		User: UserRecord{
			Domain:   population.Domain,
			FullName: handle,
			ID:       p.User.ID,
			Name:     handle,
		},
	}
}

func (s *Synthesizer) deviceID() string {
	if s.Src.Chance(deviceIDRate) {
		return s.Src.UUID()
	}
	return ""
}
