package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Cache entries: namespaced key-value rows with creation timestamps.
-- One namespace per TTL cache instance (preflight, preview, titles);
-- expiry is decided by the cache layer, not here.
CREATE TABLE IF NOT EXISTS cache_entries (
    namespace TEXT NOT NULL,
    key TEXT NOT NULL,
    payload BLOB NOT NULL,
    created_at INTEGER NOT NULL,  -- unix nanoseconds
    PRIMARY KEY (namespace, key)
);

CREATE INDEX IF NOT EXISTS idx_cache_created ON cache_entries(namespace, created_at);
`
