package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"limscore/pkg/domain"
)

// stubConn emulates just enough of the pgx surface for the snapshot store:
// ping, DDL, the state upsert inside a transaction, and the state select.
type stubConn struct {
	execs    []string
	state    map[string][]byte
	failPing bool
	failExec bool
}

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{state: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *stubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, fmt.Errorf("not implemented")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) Ping(context.Context) error {
	if c.failPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	if c.failExec {
		return nil, fmt.Errorf("exec fail")
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO STATE") {
		if len(args) != 2 {
			return nil, fmt.Errorf("expected bucket and payload args, got %d", len(args))
		}
		bucket, ok := args[0].Value.(string)
		if !ok {
			return nil, fmt.Errorf("bucket arg type %T", args[0].Value)
		}
		payload, ok := args[1].Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("payload arg type %T", args[1].Value)
		}
		c.state[bucket] = append([]byte(nil), payload...)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(strings.ToUpper(query), "FROM STATE") {
		return nil, fmt.Errorf("unexpected query %s", query)
	}
	buckets := make([]string, 0, len(c.state))
	for b := range c.state {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)
	rows := make([][]driver.Value, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []driver.Value{b, append([]byte(nil), c.state[b]...)})
	}
	return &stubRows{cols: []string{"bucket", "payload"}, rows: rows}, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}

func TestNewStoreCreatesStateTable(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	if _, err := NewStore("", domain.NewRulesEngine()); err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state DDL, got execs: %v", conn.execs)
	}
}

func TestRunInTransactionPersistsSnapshot(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreatePart(domain.Part{LabName: "pk1", OwnerID: "u1"})
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
	payload, ok := conn.state["parts"]
	if !ok {
		t.Fatalf("expected parts bucket upserted, got %v", conn.state)
	}
	if !strings.Contains(string(payload), "pk1") {
		t.Fatalf("parts payload missing record: %s", payload)
	}
}

func TestNewStoreHydratesFromExistingSnapshot(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	seed, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	var partID string
	if _, err := seed.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		part, err := tx.CreatePart(domain.Part{LabName: "pk1", OwnerID: "u1"})
		partID = part.ID
		return err
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	if len(conn.state) == 0 {
		t.Fatalf("expected persisted buckets before rehydrate")
	}

	store, err := NewStore("", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	part, ok := store.GetPart(partID)
	if !ok || part.LabName != "pk1" {
		t.Fatalf("expected pk1 hydrated, got %+v ok=%v", part, ok)
	}
}

func TestNewStoreOpenAndPingErrors(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, errors.New("open fail")
	})
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil || !strings.Contains(err.Error(), "open fail") {
		t.Fatalf("expected open error, got %v", err)
	}
	restore()

	db, conn := newStubDB()
	conn.failPing = true
	restore = OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestNewStoreDDLError(t *testing.T) {
	db, conn := newStubDB()
	conn.failExec = true
	conn.failPing = false
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore("", domain.NewRulesEngine()); err == nil {
		t.Fatalf("expected ddl error")
	}
}
