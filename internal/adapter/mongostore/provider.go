package mongostore

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"os"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"featurestore/config"
	"featurestore/internal/errors"
	"featurestore/internal/logging"
	"featurestore/internal/port"
)

// Dialer opens a document store at uri over TLS.
type Dialer func(ctx context.Context, uri string, tlsConfig *tls.Config) (port.DocumentStore, error)

// Dial connects the MongoDB driver. Server selection is lazy, so network
// failures surface on the first command.
func Dial(ctx context.Context, uri string, tlsConfig *tls.Config) (port.DocumentStore, error) {
	opts := options.Client().ApplyURI(uri).SetTLSConfig(tlsConfig)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewStore(client), nil
}

// Provider owns the one document store connection of the process. Construct
// it once at startup and pass it to whatever needs a Connection.
type Provider struct {
	cfg    config.MongoConfig
	logger *slog.Logger
	lookup func(string) (string, bool)
	dial   Dialer

	mu    sync.Mutex
	store port.DocumentStore
}

// Option configures a Provider.
type Option func(*Provider)

// WithDialer replaces the MongoDB driver dialer.
func WithDialer(d Dialer) Option {
	return func(p *Provider) { p.dial = d }
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(p *Provider) { p.lookup = fn }
}

// WithLogger sets the logger for connection diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

func NewProvider(cfg config.MongoConfig, opts ...Option) *Provider {
	p := &Provider{
		cfg:    cfg,
		logger: logging.Discard(),
		lookup: os.LookupEnv,
		dial:   Dial,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connection is a store handle bound to one logical database.
type Connection struct {
	Store    port.DocumentStore
	Database port.Database
	Name     string
}

// Store returns the shared store, dialing it on first use. Concurrent callers
// share a single dial; a failed dial is not cached.
func (p *Provider) Store(ctx context.Context) (port.DocumentStore, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.store != nil {
		return p.store, nil
	}

	uri, ok := p.lookup(p.cfg.URLEnv)
	if !ok || uri == "" {
		return nil, errors.Newf(errors.ErrConfiguration, "environment variable %q is not set", p.cfg.URLEnv)
	}

	tlsConfig, err := p.tlsConfig()
	if err != nil {
		return nil, err
	}

	store, err := p.dial(ctx, uri, tlsConfig)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConnectivity, err, "connecting to document store")
	}

	shown := logging.RedactURL(uri)
	if p.cfg.LogCredentials {
		shown = uri
	}
	p.logger.Info("connected to document store", "url", shown)

	p.store = store
	return store, nil
}

// Open binds the named logical database, or the configured default when name
// is empty, and checks that the store reports it.
func (p *Provider) Open(ctx context.Context, name string) (*Connection, error) {
	store, err := p.Store(ctx)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = p.cfg.Database
	}
	if name == "" {
		name = config.DefaultDatabaseName
	}
	db := store.Database(name)
	p.logger.Info("using database", "database", name)

	names, err := store.ListDatabaseNames(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConnectivity, err, "listing databases")
	}
	p.logger.Info("available databases", "databases", names)

	found := false
	for _, n := range names {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Newf(errors.ErrDatabaseNotFound, "database %q not found in document store", name)
	}

	p.logger.Debug("document store connection ready", "database", name)
	return &Connection{Store: store, Database: db, Name: name}, nil
}

// Close disconnects the shared store if it was opened.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.store == nil {
		return nil
	}
	err := p.store.Disconnect(ctx)
	p.store = nil
	return errors.Wrap(errors.ErrConnectivity, err, "disconnecting document store")
}

func (p *Provider) tlsConfig() (*tls.Config, error) {
	if p.cfg.TLSCAFile == "" {
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, errors.Wrap(errors.ErrConfiguration, err, "loading system root certificates")
		}
		return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
	}

	pem, err := os.ReadFile(p.cfg.TLSCAFile)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrConfiguration, err, "reading CA bundle %s", p.cfg.TLSCAFile)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.Newf(errors.ErrConfiguration, "no certificates found in CA bundle %s", p.cfg.TLSCAFile)
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
