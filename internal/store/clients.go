package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NewClientToken issues an opaque agent credential. Tokens are random and
// never derived from the client identity.
func NewClientToken() string {
	return "vmoi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CreateClient registers a new client with a freshly issued token. Names are
// not unique: registering the same name twice yields two identities.
func (s *Store) CreateClient(ctx context.Context, name string) (Client, error) {
	rows, err := s.pool.Query(ctx,
		`INSERT INTO clients (name, token) VALUES ($1, $2) RETURNING *`,
		name, NewClientToken())
	if err != nil {
		return Client{}, fmt.Errorf("create client: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[Client])
}

func (s *Store) FindClientByID(ctx context.Context, id uuid.UUID) (Client, error) {
	rows, err := s.pool.Query(ctx, `SELECT * FROM clients WHERE id = $1`, id)
	if err != nil {
		return Client{}, fmt.Errorf("query client: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[Client])
}

// FindClientByToken is the agent-token lookup. It returns pgx.ErrNoRows for
// unknown tokens; session tokens never match because they live in a different
// table.
func (s *Store) FindClientByToken(ctx context.Context, token string) (Client, error) {
	rows, err := s.pool.Query(ctx, `SELECT * FROM clients WHERE token = $1`, token)
	if err != nil {
		return Client{}, fmt.Errorf("query client: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[Client])
}

func (s *Store) AllClients(ctx context.Context) ([]Client, error) {
	rows, err := s.pool.Query(ctx, `SELECT * FROM clients ORDER BY weight DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[Client])
}

func (s *Store) VisibleClients(ctx context.Context) ([]Client, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM clients WHERE hidden = FALSE ORDER BY weight DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[Client])
}

// BasicInfo carries the descriptive fields an agent may overwrite on its own
// identity. This is an idempotent description upsert, not a time-series write.
type BasicInfo struct {
	CpuName        string `json:"cpu_name"`
	Arch           string `json:"arch"`
	CpuCores       int32  `json:"cpu_cores"`
	OS             string `json:"os"`
	KernelVersion  string `json:"kernel_version"`
	GpuName        string `json:"gpu_name"`
	Virtualization string `json:"virtualization"`
	MemTotal       int64  `json:"mem_total"`
	SwapTotal      int64  `json:"swap_total"`
	DiskTotal      int64  `json:"disk_total"`
	Version        string `json:"version"`
}

func (s *Store) UpdateClientBasicInfo(ctx context.Context, id uuid.UUID, info BasicInfo) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE clients SET
			cpu_name = $2, arch = $3, cpu_cores = $4, os = $5,
			kernel_version = $6, gpu_name = $7, virtualization = $8,
			mem_total = $9, swap_total = $10, disk_total = $11,
			version = $12, updated_at = NOW()
		 WHERE id = $1`,
		id, info.CpuName, info.Arch, info.CpuCores, info.OS,
		info.KernelVersion, info.GpuName, info.Virtualization,
		info.MemTotal, info.SwapTotal, info.DiskTotal, info.Version)
	if err != nil {
		return fmt.Errorf("update client info: %w", err)
	}
	return nil
}

func (s *Store) UpdateClientIPs(ctx context.Context, id uuid.UUID, ipv4, ipv6 *string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE clients SET ipv4 = $2, ipv6 = $3, updated_at = NOW() WHERE id = $1`,
		id, ipv4, ipv6)
	if err != nil {
		return fmt.Errorf("update client ips: %w", err)
	}
	return nil
}

// SetClientOnline is the single write behind every liveness transition. It is
// one row-scoped UPDATE, so concurrent pulses for the same client are atomic
// and last-writer-wins on last_seen_at.
func (s *Store) SetClientOnline(ctx context.Context, id uuid.UUID, online bool) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE clients SET online = $2, last_seen_at = NOW() WHERE id = $1`,
		id, online)
	if err != nil {
		return fmt.Errorf("update client online: %w", err)
	}
	return nil
}

// ClientProfileUpdate holds the operator-editable fields; nil means unchanged.
type ClientProfileUpdate struct {
	Name         *string `json:"name"`
	GroupName    *string `json:"group_name"`
	Remark       *string `json:"remark"`
	PublicRemark *string `json:"public_remark"`
	Hidden       *bool   `json:"hidden"`
	Weight       *int32  `json:"weight"`
}

func (s *Store) UpdateClientProfile(ctx context.Context, id uuid.UUID, upd ClientProfileUpdate) error {
	var sb strings.Builder
	sb.WriteString("UPDATE clients SET updated_at = NOW()")
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		fmt.Fprintf(&sb, ", %s = $%d", column, len(args))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.GroupName != nil {
		add("group_name", *upd.GroupName)
	}
	if upd.Remark != nil {
		add("remark", *upd.Remark)
	}
	if upd.PublicRemark != nil {
		add("public_remark", *upd.PublicRemark)
	}
	if upd.Hidden != nil {
		add("hidden", *upd.Hidden)
	}
	if upd.Weight != nil {
		add("weight", *upd.Weight)
	}

	sb.WriteString(" WHERE id = $1")

	if _, err := s.pool.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

// DeleteClient removes the identity; its records cascade away with it.
func (s *Store) DeleteClient(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}
