package store

import (
	"errors"
	"testing"

	"zombiezen.com/go/sqlite"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	conn, err := sqlite.OpenConn(":memory:", sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenMemory)
	if err != nil {
		t.Fatalf("failed to open connection: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return New(conn)
}

func TestValidIdent(t *testing.T) {
	tests := []struct {
		name  string
		ident string
		want  bool
	}{
		{"simple", "vectors", true},
		{"leading underscore", "_idx", true},
		{"mixed", "Idx_01", true},
		{"empty", "", false},
		{"leading digit", "1idx", false},
		{"space", "my idx", false},
		{"quote", `x"y`, false},
		{"semicolon", "x;drop", false},
		{"dash", "my-idx", false},
		{"64 chars", "a234567890123456789012345678901234567890123456789012345678901234", true},
		{"65 chars", "a2345678901234567890123456789012345678901234567890123456789012345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidIdent(tt.ident); got != tt.want {
				t.Errorf("ValidIdent(%q) = %v, want %v", tt.ident, got, tt.want)
			}
		})
	}
}

func TestTableLifecycle(t *testing.T) {
	db := newTestDB(t)

	exists, err := db.TableExists("main", "t_shadow")
	if err != nil {
		t.Fatalf("TableExists error: %v", err)
	}
	if exists {
		t.Fatal("table reported before creation")
	}

	if err := db.CreateShadowTable("main", "t_shadow"); err != nil {
		t.Fatalf("CreateShadowTable error: %v", err)
	}
	exists, err = db.TableExists("main", "t_shadow")
	if err != nil || !exists {
		t.Fatalf("table missing after creation: exists=%v err=%v", exists, err)
	}

	if err := db.DropTable("main", "t_shadow"); err != nil {
		t.Fatalf("DropTable error: %v", err)
	}
	exists, _ = db.TableExists("main", "t_shadow")
	if exists {
		t.Fatal("table reported after drop")
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := newTestDB(t)
	if err := db.CreateMetaTable("main", "t_metadata"); err != nil {
		t.Fatalf("CreateMetaTable error: %v", err)
	}

	if _, ok, err := db.MetaGet("main", "t_metadata", "dimensions"); err != nil || ok {
		t.Fatalf("MetaGet on empty table: ok=%v err=%v", ok, err)
	}

	if err := db.MetaSet("main", "t_metadata", "dimensions", 128); err != nil {
		t.Fatalf("MetaSet error: %v", err)
	}
	v, ok, err := db.MetaGet("main", "t_metadata", "dimensions")
	if err != nil || !ok || v != 128 {
		t.Fatalf("MetaGet = %d, %v, %v; want 128", v, ok, err)
	}

	// Upsert replaces.
	if err := db.MetaSet("main", "t_metadata", "dimensions", 256); err != nil {
		t.Fatalf("MetaSet overwrite error: %v", err)
	}
	v, _, _ = db.MetaGet("main", "t_metadata", "dimensions")
	if v != 256 {
		t.Fatalf("MetaGet after overwrite = %d, want 256", v)
	}
}

func TestZeroBlobRowAndBlob(t *testing.T) {
	db := newTestDB(t)
	if err := db.CreateShadowTable("main", "t_shadow"); err != nil {
		t.Fatalf("CreateShadowTable error: %v", err)
	}

	const size = 4096
	if err := db.InsertZeroBlobRow("main", "t_shadow", 7, size); err != nil {
		t.Fatalf("InsertZeroBlobRow error: %v", err)
	}

	blob, err := db.OpenBlob("main", "t_shadow", 7, false)
	if err != nil {
		t.Fatalf("OpenBlob error: %v", err)
	}
	defer blob.Close()
	if blob.Size() != size {
		t.Errorf("blob size = %d, want %d", blob.Size(), size)
	}
}

func TestOpenBlobMissingRow(t *testing.T) {
	db := newTestDB(t)
	if err := db.CreateShadowTable("main", "t_shadow"); err != nil {
		t.Fatalf("CreateShadowTable error: %v", err)
	}

	_, err := db.OpenBlob("main", "t_shadow", 42, false)
	if !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("OpenBlob on missing row = %v, want ErrRowNotFound", err)
	}
}

func TestRandomRowID(t *testing.T) {
	db := newTestDB(t)
	if err := db.CreateShadowTable("main", "t_shadow"); err != nil {
		t.Fatalf("CreateShadowTable error: %v", err)
	}

	if _, ok, err := db.RandomRowID("main", "t_shadow"); err != nil || ok {
		t.Fatalf("RandomRowID on empty table: ok=%v err=%v", ok, err)
	}

	for id := int64(1); id <= 5; id++ {
		if err := db.InsertZeroBlobRow("main", "t_shadow", id, 16); err != nil {
			t.Fatalf("InsertZeroBlobRow error: %v", err)
		}
	}
	id, ok, err := db.RandomRowID("main", "t_shadow")
	if err != nil || !ok {
		t.Fatalf("RandomRowID: ok=%v err=%v", ok, err)
	}
	if id < 1 || id > 5 {
		t.Errorf("RandomRowID = %d, want 1..5", id)
	}
}

func TestDeleteRowChanges(t *testing.T) {
	db := newTestDB(t)
	if err := db.CreateShadowTable("main", "t_shadow"); err != nil {
		t.Fatalf("CreateShadowTable error: %v", err)
	}
	if err := db.InsertZeroBlobRow("main", "t_shadow", 1, 16); err != nil {
		t.Fatalf("InsertZeroBlobRow error: %v", err)
	}

	changes, err := db.DeleteRow("main", "t_shadow", 1)
	if err != nil || changes != 1 {
		t.Fatalf("DeleteRow = %d, %v; want 1", changes, err)
	}
	changes, err = db.DeleteRow("main", "t_shadow", 1)
	if err != nil || changes != 0 {
		t.Fatalf("second DeleteRow = %d, %v; want 0", changes, err)
	}
}

func TestSavepointRollback(t *testing.T) {
	db := newTestDB(t)
	if err := db.CreateShadowTable("main", "t_shadow"); err != nil {
		t.Fatalf("CreateShadowTable error: %v", err)
	}

	sp := db.Savepoint("sp_test")
	if !sp.Active() {
		t.Fatal("savepoint did not start")
	}
	if err := db.InsertZeroBlobRow("main", "t_shadow", 1, 16); err != nil {
		t.Fatalf("InsertZeroBlobRow error: %v", err)
	}
	if err := sp.Rollback(); err != nil {
		t.Fatalf("Rollback error: %v", err)
	}

	n, err := db.CountRows("main", "t_shadow")
	if err != nil || n != 0 {
		t.Fatalf("row count after rollback = %d, %v; want 0", n, err)
	}
}

func TestSavepointRelease(t *testing.T) {
	db := newTestDB(t)
	if err := db.CreateShadowTable("main", "t_shadow"); err != nil {
		t.Fatalf("CreateShadowTable error: %v", err)
	}

	sp := db.Savepoint("sp_test")
	if err := db.InsertZeroBlobRow("main", "t_shadow", 1, 16); err != nil {
		t.Fatalf("InsertZeroBlobRow error: %v", err)
	}
	if err := sp.Release(); err != nil {
		t.Fatalf("Release error: %v", err)
	}

	n, err := db.CountRows("main", "t_shadow")
	if err != nil || n != 1 {
		t.Fatalf("row count after release = %d, %v; want 1", n, err)
	}
}
