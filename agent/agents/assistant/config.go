package assistant

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

type ProfileBackend string

const (
	ProfileSandbox  ProfileBackend = "sandbox"
	ProfilePostgres ProfileBackend = "postgres"
)

// Config is loaded with the ASSISTANT prefix.
type Config struct {
	Timezone        string           `split_words:"true" default:"Asia/Riyadh"`
	DispatchTimeout time.Duration    `split_words:"true" default:"20s"`
	LockTimeout     time.Duration    `split_words:"true" default:"30s"`
	SessionStore    statex.StoreType `split_words:"true" default:"memory"`
	SessionTTL      time.Duration    `split_words:"true" default:"24h"`
	ProfileBackend  ProfileBackend   `split_words:"true" default:"sandbox"`
	HTTPAddr        string           `split_words:"true" default:":8080"`
	Locale          string           `default:"en"`
	MaxToolCalls    int              `split_words:"true" default:"4"`
	Fanout          int              `default:"4"`
}

func (c Config) Validate() error {
	switch c.SessionStore {
	case statex.StoreTypeMemory, statex.StoreTypeRedis, statex.StoreTypeUpstash:
	default:
		return fmt.Errorf("%w: %q", statex.ErrInvalidStore, c.SessionStore)
	}
	switch c.ProfileBackend {
	case ProfileSandbox, ProfilePostgres:
	default:
		return fmt.Errorf("%w: unknown profile backend %q", contractx.ErrValidation, c.ProfileBackend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the operating timezone relative dates resolve in.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", contractx.ErrValidation, name, err)
	}
	return loc, nil
}
