package unit

import (
	"context"

	"github.com/denismitr/mversion/migration"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Script is a unit described by a yaml file:
//
//	class: CreateUsers
//	up:
//	  - CREATE TABLE users (id BIGINT PRIMARY KEY)
//	down:
//	  - DROP TABLE users
type Script struct {
	Class       string   `yaml:"class"`
	Description string   `yaml:"description"`
	UpSQL       []string `yaml:"up"`
	DownSQL     []string `yaml:"down"`
}

var _ migration.Unit = (*Script)(nil)

func ParseScript(b []byte) (*Script, error) {
	var s Script
	if err := yaml.UnmarshalStrict(b, &s); err != nil {
		return nil, errors.Wrap(err, "could not parse migration script")
	}

	return &s, nil
}

func (s *Script) Up(ctx context.Context, env migration.Env) error {
	return s.exec(ctx, env, s.UpSQL)
}

func (s *Script) Down(ctx context.Context, env migration.Env) error {
	return s.exec(ctx, env, s.DownSQL)
}

func (s *Script) exec(ctx context.Context, env migration.Env, statements []string) error {
	if len(statements) == 0 {
		return nil
	}

	if env.Executor == nil {
		return errors.Errorf("no executor available to run [%s]", s.Class)
	}

	return env.Executor.Exec(ctx, statements...)
}
