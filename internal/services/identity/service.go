package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/vaultd/internal/db/bunx"
	"github.com/campushq/vaultd/internal/db/models"
	"github.com/campushq/vaultd/internal/errdefs"
	"github.com/campushq/vaultd/internal/repository"
)

// secretBytes is the entropy of a generated client secret before hex encoding.
const secretBytes = 32

// createRetries bounds id regeneration when a generated client id collides
// with an existing row. UUIDv7 collisions are vanishingly rare, so more than
// one retry already indicates something is wrong with the id source.
const createRetries = 3

// Client is the service-level view of a vault client. The plaintext secret
// appears only in the value returned by Create and Rotate; it is never
// stored and cannot be recovered afterwards.
type Client struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Service manages vault client identities: creation, secret verification,
// and secret rotation. Secrets are stored only as bcrypt hashes.
type Service struct {
	clients repository.ClientRepository
}

// NewService constructs a new identity Service.
func NewService(clients repository.ClientRepository) *Service {
	return &Service{clients: clients}
}

// Create registers a new client and returns it together with the generated
// plaintext secret. The secret is shown exactly once.
func (s *Service) Create(ctx context.Context, name, description string) (*Client, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", errdefs.Validationf("client name must not be empty")
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash client secret: %w", err)
	}

	record := &models.Client{
		SecretHash:  string(hash),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		record.ID = bunx.NewUUIDv7()
		err = s.clients.Create(ctx, record)
		if err == nil {
			return toClient(record), secret, nil
		}
		if !errdefs.IsConflict(err) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("create client: %w", err)
}

// Verify checks a client id and plaintext secret pair. It returns false for
// unknown ids and wrong secrets alike, and spends a bcrypt comparison either
// way so response timing does not reveal whether the id exists.
func (s *Service) Verify(ctx context.Context, id, secret string) (bool, error) {
	record, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if errdefs.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
			return false, nil
		}
		return false, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.SecretHash), []byte(secret)); err != nil {
		return false, nil
	}
	return true, nil
}

// Get returns the client with the given id.
func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	record, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClient(record), nil
}

// List returns all clients, newest first.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	records, err := s.clients.List(ctx)
	if err != nil {
		return nil, err
	}
	clients := make([]Client, 0, len(records))
	for i := range records {
		clients = append(clients, *toClient(&records[i]))
	}
	return clients, nil
}

// UpdateInfo changes the client's name and description.
func (s *Service) UpdateInfo(ctx context.Context, id, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errdefs.Validationf("client name must not be empty")
	}
	return s.clients.UpdateInfo(ctx, id, name, description)
}

// Rotate replaces the client's secret and returns the new plaintext value.
// The previous secret stops working immediately.
func (s *Service) Rotate(ctx context.Context, id string) (string, error) {
	secret, err := generateSecret()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash client secret: %w", err)
	}
	if err := s.clients.UpdateSecretHash(ctx, id, string(hash)); err != nil {
		return "", err
	}
	return secret, nil
}

// Delete removes the client and all grants referencing it.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.clients.Delete(ctx, id)
}

func toClient(record *models.Client) *Client {
	return &Client{
		ID:          record.ID,
		Name:        record.Name,
		Description: record.Description,
		CreatedAt:   record.CreatedAt,
	}
}

func generateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate client secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// dummyHash is a bcrypt hash of an unguessable value, compared against when
// the client id does not exist to keep Verify's timing uniform.
var dummyHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("vaultd-dummy-verify-target"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}()
