package agentcfg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS chat_agents (
	id SERIAL PRIMARY KEY,
	business_id VARCHAR(255) UNIQUE NOT NULL,
	business_name VARCHAR(255) NOT NULL,
	webhook_url TEXT NOT NULL,
	position VARCHAR(50) DEFAULT 'bottom-right',
	primary_color VARCHAR(7) DEFAULT '#e75837',
	secondary_color VARCHAR(7) DEFAULT '#745e25',
	welcome_message TEXT DEFAULT 'Welcome! How can I help you today?',
	width INTEGER DEFAULT 350,
	height INTEGER DEFAULT 500,
	show_timestamp BOOLEAN DEFAULT true,
	enable_typing_indicator BOOLEAN DEFAULT true,
	max_messages INTEGER,
	api_key TEXT,
	agent_id VARCHAR(255),
	is_active BOOLEAN DEFAULT true,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

const configColumns = `business_id, business_name, webhook_url, position,
	primary_color, secondary_color, welcome_message, width, height,
	show_timestamp, enable_typing_indicator, max_messages, api_key, agent_id`

// PostgresStore implements Store on a pgx connection pool. Deletes are soft:
// rows are flagged inactive and excluded from every query.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and makes sure the chat_agents
// table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("initialize chat_agents table: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// List returns active configs, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]Config, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+configColumns+`
		FROM chat_agents
		WHERE is_active = true
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list agent configs: %w", err)
	}
	defer rows.Close()

	var out []Config
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// Get looks up an active config by business identifier.
func (s *PostgresStore) Get(ctx context.Context, businessID string) (Config, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+configColumns+`
		FROM chat_agents
		WHERE business_id = $1 AND is_active = true`, businessID)

	cfg, err := scanConfig(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Config{}, ErrNotFound
	}
	return cfg, err
}

// Create inserts a new config row.
func (s *PostgresStore) Create(ctx context.Context, cfg Config) (Config, error) {
	if _, err := s.Get(ctx, cfg.BusinessID); err == nil {
		return Config{}, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return Config{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO chat_agents (`+configColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING `+configColumns,
		cfg.BusinessID, cfg.BusinessName, cfg.WebhookURL, cfg.Position,
		cfg.PrimaryColor, cfg.SecondaryColor, cfg.WelcomeMessage,
		cfg.Width, cfg.Height, cfg.ShowTimestamp, cfg.EnableTypingIndicator,
		cfg.MaxMessages, nullable(cfg.APIKey), nullable(cfg.AgentID))

	created, err := scanConfig(row)
	if err != nil {
		return Config{}, fmt.Errorf("create agent config: %w", err)
	}
	return created, nil
}

// Update overlays the supplied fields with a dynamically built SET clause.
func (s *PostgresStore) Update(ctx context.Context, businessID string, upd Update) (Config, error) {
	fields := make([]string, 0, 13)
	values := make([]any, 0, 14)
	add := func(column string, value any) {
		values = append(values, value)
		fields = append(fields, fmt.Sprintf("%s = $%d", column, len(values)))
	}

	if upd.BusinessName != nil {
		add("business_name", *upd.BusinessName)
	}
	if upd.WebhookURL != nil {
		add("webhook_url", *upd.WebhookURL)
	}
	if upd.Position != nil {
		add("position", *upd.Position)
	}
	if upd.PrimaryColor != nil {
		add("primary_color", *upd.PrimaryColor)
	}
	if upd.SecondaryColor != nil {
		add("secondary_color", *upd.SecondaryColor)
	}
	if upd.WelcomeMessage != nil {
		add("welcome_message", *upd.WelcomeMessage)
	}
	if upd.Width != nil {
		add("width", *upd.Width)
	}
	if upd.Height != nil {
		add("height", *upd.Height)
	}
	if upd.ShowTimestamp != nil {
		add("show_timestamp", *upd.ShowTimestamp)
	}
	if upd.EnableTypingIndicator != nil {
		add("enable_typing_indicator", *upd.EnableTypingIndicator)
	}
	if upd.MaxMessages != nil {
		add("max_messages", *upd.MaxMessages)
	}
	if upd.APIKey != nil {
		add("api_key", *upd.APIKey)
	}
	if upd.AgentID != nil {
		add("agent_id", *upd.AgentID)
	}

	if len(fields) == 0 {
		return s.Get(ctx, businessID)
	}
	add("updated_at", time.Now().UTC())

	values = append(values, businessID)
	query := fmt.Sprintf(`
		UPDATE chat_agents
		SET %s
		WHERE business_id = $%d AND is_active = true
		RETURNING %s`, strings.Join(fields, ", "), len(values), configColumns)

	cfg, err := scanConfig(s.pool.QueryRow(ctx, query, values...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Config{}, ErrNotFound
	}
	if err != nil {
		return Config{}, fmt.Errorf("update agent config: %w", err)
	}
	return cfg, nil
}

// Delete soft-deletes a config by flagging it inactive.
func (s *PostgresStore) Delete(ctx context.Context, businessID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE chat_agents
		SET is_active = false, updated_at = $2
		WHERE business_id = $1 AND is_active = true`, businessID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete agent config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping reports database reachability for the status endpoint.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanConfig(row pgx.Row) (Config, error) {
	var (
		cfg    Config
		apiKey *string
		agent  *string
	)
	err := row.Scan(
		&cfg.BusinessID, &cfg.BusinessName, &cfg.WebhookURL, &cfg.Position,
		&cfg.PrimaryColor, &cfg.SecondaryColor, &cfg.WelcomeMessage,
		&cfg.Width, &cfg.Height, &cfg.ShowTimestamp, &cfg.EnableTypingIndicator,
		&cfg.MaxMessages, &apiKey, &agent)
	if err != nil {
		return Config{}, err
	}
	if apiKey != nil {
		cfg.APIKey = *apiKey
	}
	if agent != nil {
		cfg.AgentID = *agent
	}
	return cfg, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
