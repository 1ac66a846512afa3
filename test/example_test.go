package test

import (
	"context"

	"github.com/redis/go-redis/v9"

	authsessions "github.com/joaofns/authsessions"
	"github.com/joaofns/authsessions/userdir"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	directory := &exampleDirectory{}

	engine, _ := authsessions.New().
		WithRedis(rdb).
		WithDirectory(directory).
		Build()
	_ = engine
}

// ExampleEngine_Login shows a typical login entrypoint call and structured error handling.
func ExampleEngine_Login() {
	var engine *authsessions.Engine
	ctx := authsessions.WithClientIP(context.Background(), "203.0.113.9")
	_, err := engine.Login(ctx, "alice", "password")
	if err != nil {
		_ = err
	}
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *authsessions.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot
}

type exampleDirectory struct{}

func (e *exampleDirectory) FindByUsername(ctx context.Context, username string) (*userdir.Credential, error) {
	return nil, userdir.ErrNotFound
}

func (e *exampleDirectory) FindByRefreshToken(ctx context.Context, token string) (*userdir.Credential, error) {
	return nil, userdir.ErrNotFound
}

func (e *exampleDirectory) Create(ctx context.Context, cred *userdir.Credential) error { return nil }
func (e *exampleDirectory) Save(ctx context.Context, cred *userdir.Credential) error   { return nil }
