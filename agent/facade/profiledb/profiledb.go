// Package profiledb serves saved travelers from Postgres through bun.
package profiledb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	"github.com/uptrace/bun"
)

type travelerRow struct {
	bun.BaseModel `bun:"table:saved_travelers,alias:st"`

	ID             string    `bun:"id,pk"`
	UserID         string    `bun:"user_id,notnull"`
	Relationship   string    `bun:"relationship"`
	FirstName      string    `bun:"first_name,notnull"`
	LastName       string    `bun:"last_name,notnull"`
	DateOfBirth    string    `bun:"date_of_birth,notnull"`
	Gender         string    `bun:"gender"`
	Nationality    string    `bun:"nationality"`
	Type           string    `bun:"passenger_type"`
	DocumentType   string    `bun:"document_type"`
	DocumentNumber string    `bun:"document_number"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r travelerRow) traveler() contractx.SavedTraveler {
	return contractx.SavedTraveler{
		ID:           r.ID,
		Relationship: r.Relationship,
		Passenger: contractx.Passenger{
			FirstName:      r.FirstName,
			LastName:       r.LastName,
			DateOfBirth:    r.DateOfBirth,
			Gender:         contractx.Gender(r.Gender),
			Nationality:    r.Nationality,
			Type:           contractx.PassengerType(r.Type),
			DocumentType:   contractx.DocumentType(r.DocumentType),
			DocumentNumber: r.DocumentNumber,
		},
	}
}

func rowFor(userID string, t contractx.SavedTraveler, now time.Time) travelerRow {
	id := strings.TrimSpace(t.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return travelerRow{
		ID:             id,
		UserID:         userID,
		Relationship:   t.Relationship,
		FirstName:      strings.TrimSpace(t.FirstName),
		LastName:       strings.TrimSpace(t.LastName),
		DateOfBirth:    t.DateOfBirth,
		Gender:         strings.ToUpper(string(t.Gender)),
		Nationality:    strings.ToUpper(t.Nationality),
		Type:           strings.ToUpper(string(t.Type)),
		DocumentType:   strings.ToUpper(string(t.DocumentType)),
		DocumentNumber: strings.ToUpper(t.DocumentNumber),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store implements contract.ProfileCapability.
type Store struct {
	db  bun.IDB
	now func() time.Time
}

var _ contractx.ProfileCapability = (*Store)(nil)

func New(db bun.IDB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the table and its user index when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*travelerRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create saved_travelers: %w", err)
	}
	if _, err := s.db.NewCreateIndex().Model((*travelerRow)(nil)).
		Index("saved_travelers_user_id_idx").IfNotExists().Column("user_id").Exec(ctx); err != nil {
		return fmt.Errorf("create saved_travelers index: %w", err)
	}
	return nil
}

func (s *Store) selectTravelers(userID string, rows *[]travelerRow) *bun.SelectQuery {
	return s.db.NewSelect().Model(rows).
		Where("st.user_id = ?", userID).
		OrderExpr("st.created_at ASC, st.id ASC")
}

func (s *Store) Travelers(ctx context.Context, userID string) ([]contractx.SavedTraveler, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []contractx.SavedTraveler{}, nil
	}
	var rows []travelerRow
	if err := s.selectTravelers(userID, &rows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: load saved travelers: %v", contractx.ErrDownstream, err)
	}
	out := make([]contractx.SavedTraveler, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.traveler())
	}
	return out, nil
}

func (s *Store) upsert(row *travelerRow) *bun.InsertQuery {
	return s.db.NewInsert().Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("relationship = EXCLUDED.relationship").
		Set("first_name = EXCLUDED.first_name").
		Set("last_name = EXCLUDED.last_name").
		Set("date_of_birth = EXCLUDED.date_of_birth").
		Set("gender = EXCLUDED.gender").
		Set("nationality = EXCLUDED.nationality").
		Set("passenger_type = EXCLUDED.passenger_type").
		Set("document_type = EXCLUDED.document_type").
		Set("document_number = EXCLUDED.document_number").
		Set("updated_at = EXCLUDED.updated_at").
		Where("st.user_id = EXCLUDED.user_id")
}

// Save inserts or updates t for userID and returns it with its id.
func (s *Store) Save(ctx context.Context, userID string, t contractx.SavedTraveler) (contractx.SavedTraveler, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return contractx.SavedTraveler{}, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}
	row := rowFor(userID, t, s.now().UTC())
	if _, err := s.upsert(&row).Exec(ctx); err != nil {
		return contractx.SavedTraveler{}, fmt.Errorf("%w: save traveler: %v", contractx.ErrDownstream, err)
	}
	return row.traveler(), nil
}

func (s *Store) Delete(ctx context.Context, userID, travelerID string) error {
	_, err := s.db.NewDelete().Model((*travelerRow)(nil)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("id = ?", strings.TrimSpace(travelerID)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: delete traveler: %v", contractx.ErrDownstream, err)
	}
	return nil
}
