// Copyright 2026 The cks-api Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter wraps OpenTelemetry meter
type Meter struct {
	meter metric.Meter

	loginAttempts  metric.Int64Counter
	authzDecisions metric.Int64Counter
}

// New creates a new meter instance and registers the instruments used by
// the auth path.
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	var meter metric.Meter
	if !cfg.Enabled {
		meter = otel.Meter("noop")
	} else {
		meter = otel.Meter(serviceName)
	}

	loginAttempts, err := meter.Int64Counter("auth.login_attempts",
		metric.WithDescription("Login attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create login counter: %w", err)
	}

	authzDecisions, err := meter.Int64Counter("authz.decisions",
		metric.WithDescription("Access guard decisions by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create authz counter: %w", err)
	}

	return &Meter{
		meter:          meter,
		loginAttempts:  loginAttempts,
		authzDecisions: authzDecisions,
	}, nil
}

// RecordLogin records one login attempt.
func (m *Meter) RecordLogin(ctx context.Context, opts ...metric.AddOption) {
	m.loginAttempts.Add(ctx, 1, opts...)
}

// RecordAuthzDecision records one guard decision.
func (m *Meter) RecordAuthzDecision(ctx context.Context, opts ...metric.AddOption) {
	m.authzDecisions.Add(ctx, 1, opts...)
}
