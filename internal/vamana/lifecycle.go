package vamana

import (
	"fmt"

	"zombiezen.com/go/sqlite"

	"github.com/xDarkicex/diskvec/internal/blob"
	"github.com/xDarkicex/diskvec/internal/node"
	"github.com/xDarkicex/diskvec/internal/store"
	"github.com/xDarkicex/diskvec/internal/util"
)

// Metadata keys. Integer-only values keep the table portable.
const (
	metaKeyFormatVersion  = "format_version"
	metaKeyDimensions     = "dimensions"
	metaKeyMetric         = "metric"
	metaKeyMaxNeighbors   = "max_neighbors"
	metaKeySearchListSize = "search_list_size"
	metaKeyInsertListSize = "insert_list_size"
	metaKeyBlockSize      = "block_size"
	metaKeyPruningAlpha   = "pruning_alpha_x1000"
)

const (
	shadowSuffix = "_shadow"
	metaSuffix   = "_metadata"
)

// SidecarSuffixes lists table suffixes Drop removes beyond the shadow and
// metadata tables. The core registers none; a virtual-table wrapper extends
// this for its own sidecars.
var SidecarSuffixes []string

// Create provisions a new index: shadow table, metadata table and the full
// parameter set. The caller's connection stays borrowed.
func Create(conn *sqlite.Conn, schema, name string, cfg Config) error {
	if err := checkNames(schema, name); err != nil {
		return err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return err
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = node.AutoBlockSize(cfg.Dimensions, cfg.MaxNeighbors)
	}

	db := store.New(conn)
	shadow := name + shadowSuffix
	meta := name + metaSuffix

	exists, err := db.TableExists(schema, shadow)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: index %s.%s", ErrExists, schema, name)
	}

	sp := db.Savepoint("diskvec_create")
	if err := createTables(db, schema, shadow, meta, cfg); err != nil {
		sp.Rollback()
		return err
	}
	return sp.Release()
}

func createTables(db *store.DB, schema, shadow, meta string, cfg Config) error {
	if err := db.CreateShadowTable(schema, shadow); err != nil {
		return fmt.Errorf("failed to create shadow table: %w", err)
	}
	if err := db.CreateMetaTable(schema, meta); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	values := []struct {
		key   string
		value int64
	}{
		{metaKeyFormatVersion, FormatVersion},
		{metaKeyDimensions, int64(cfg.Dimensions)},
		{metaKeyMetric, int64(cfg.Metric)},
		{metaKeyMaxNeighbors, int64(cfg.MaxNeighbors)},
		{metaKeySearchListSize, int64(cfg.SearchListSize)},
		{metaKeyInsertListSize, int64(cfg.InsertListSize)},
		{metaKeyBlockSize, int64(cfg.BlockSize)},
		{metaKeyPruningAlpha, int64(cfg.PruningAlphaX1000)},
	}
	for _, kv := range values {
		if err := db.MetaSet(schema, meta, kv.key, kv.value); err != nil {
			return fmt.Errorf("failed to store metadata %s: %w", kv.key, err)
		}
	}
	return nil
}

// Open loads an existing index's configuration and returns a handle.
func Open(conn *sqlite.Conn, schema, name string) (*Index, error) {
	if err := checkNames(schema, name); err != nil {
		return nil, err
	}

	db := store.New(conn)
	shadow := name + shadowSuffix
	meta := name + metaSuffix

	exists, err := db.TableExists(schema, shadow)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: index %s.%s", ErrNotFound, schema, name)
	}

	version, err := metaValue(db, schema, meta, metaKeyFormatVersion)
	if err != nil {
		return nil, err
	}
	if version > FormatVersion {
		return nil, fmt.Errorf("%w: stored version %d, supported %d", ErrVersion, version, FormatVersion)
	}

	var cfg Config
	fields := []struct {
		key string
		dst *int
	}{
		{metaKeyDimensions, &cfg.Dimensions},
		{metaKeyMaxNeighbors, &cfg.MaxNeighbors},
		{metaKeySearchListSize, &cfg.SearchListSize},
		{metaKeyInsertListSize, &cfg.InsertListSize},
		{metaKeyBlockSize, &cfg.BlockSize},
	}
	for _, f := range fields {
		v, err := metaValue(db, schema, meta, f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = int(v)
	}
	metric, err := metaValue(db, schema, meta, metaKeyMetric)
	if err != nil {
		return nil, err
	}
	cfg.Metric = util.DistanceMetric(metric)

	alpha, ok, err := db.MetaGet(schema, meta, metaKeyPruningAlpha)
	if err != nil {
		return nil, err
	}
	switch {
	case ok && alpha > 0:
		cfg.PruningAlphaX1000 = int(alpha)
	case version < 2:
		// Pre-v2 indices did not store alpha; zero means "not stored".
		cfg.PruningAlphaX1000 = DefaultPruningAlphaX1000
	default:
		return nil, fmt.Errorf("%w: metadata %s is %d", ErrInvalid, metaKeyPruningAlpha, alpha)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	distance, err := util.GetDistanceFunc(cfg.Metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	ix := &Index{
		db:        db,
		schema:    schema,
		name:      name,
		shadow:    shadow,
		meta:      meta,
		cfg:       cfg,
		layout:    node.NewLayout(cfg.Dimensions, cfg.BlockSize),
		distance:  distance,
		cache:     blob.NewCache(defaultCacheCapacity),
		vecNode:   make([]float32, cfg.Dimensions),
		vecEdge:   make([]float32, cfg.Dimensions),
		vecAnchor: make([]float32, cfg.Dimensions),
	}
	return ix, nil
}

// Drop removes the index's shadow, metadata and registered sidecar tables.
func Drop(conn *sqlite.Conn, schema, name string) error {
	if err := checkNames(schema, name); err != nil {
		return err
	}

	db := store.New(conn)
	sp := db.Savepoint("diskvec_drop")

	suffixes := append([]string{shadowSuffix, metaSuffix}, SidecarSuffixes...)
	for _, suffix := range suffixes {
		if err := db.DropTable(schema, name+suffix); err != nil {
			sp.Rollback()
			return fmt.Errorf("failed to drop %s%s: %w", name, suffix, err)
		}
	}
	return sp.Release()
}

// Clear deletes every vector while preserving the index structure and
// metadata.
func Clear(conn *sqlite.Conn, schema, name string) error {
	if err := checkNames(schema, name); err != nil {
		return err
	}

	db := store.New(conn)
	exists, err := db.TableExists(schema, name+shadowSuffix)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: index %s.%s", ErrNotFound, schema, name)
	}
	return db.ClearTable(schema, name+shadowSuffix)
}

func checkNames(schema, name string) error {
	if err := store.CheckIdent(schema); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := store.CheckIdent(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func metaValue(db *store.DB, schema, meta, key string) (int64, error) {
	v, ok, err := db.MetaGet(schema, meta, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read metadata %s: %w", key, err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: metadata key %s missing", ErrInvalid, key)
	}
	return v, nil
}
