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

// Package inventory holds the cluster and namespace records that RBAC
// grant scopes point at. Provisioning and orchestration live elsewhere;
// this package only answers "does this scope exist and whose is it".
package inventory

import (
	"context"
	"errors"
	"time"
)

var (
	ErrClusterNotFound   = errors.New("cluster not found")
	ErrNamespaceNotFound = errors.New("namespace not found")
)

// Cluster is a tenant-owned Kubernetes cluster record.
type Cluster struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Namespace is a namespace within a tenant's cluster.
type Namespace struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	ClusterID string    `json:"clusterId"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository defines the interface for inventory reads
type Repository interface {
	GetCluster(ctx context.Context, id string) (*Cluster, error)
	GetNamespace(ctx context.Context, id string) (*Namespace, error)
	ListClusters(ctx context.Context, tenantID string) ([]*Cluster, error)
	// ListNamespaces lists a tenant's namespaces, optionally narrowed to a
	// cluster (empty clusterID = all clusters).
	ListNamespaces(ctx context.Context, tenantID, clusterID string) ([]*Namespace, error)
}

// Service exposes inventory reads to handlers and to RBAC grant
// validation.
type Service struct {
	repo Repository
}

// NewService creates a new inventory service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetCluster(ctx context.Context, id string) (*Cluster, error) {
	return s.repo.GetCluster(ctx, id)
}

func (s *Service) GetNamespace(ctx context.Context, id string) (*Namespace, error) {
	return s.repo.GetNamespace(ctx, id)
}

func (s *Service) ListClusters(ctx context.Context, tenantID string) ([]*Cluster, error) {
	return s.repo.ListClusters(ctx, tenantID)
}

func (s *Service) ListNamespaces(ctx context.Context, tenantID, clusterID string) ([]*Namespace, error) {
	return s.repo.ListNamespaces(ctx, tenantID, clusterID)
}
