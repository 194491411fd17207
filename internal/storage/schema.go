package storage

const schemaSQL = `
-- URLs whose processing finished in any run sharing this checkpoint
CREATE TABLE IF NOT EXISTS visited (
    url TEXT PRIMARY KEY NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('written', 'failed', 'skipped')),
    name TEXT,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_visited_status ON visited(status);

-- Discovered URLs not yet processed when the last snapshot was taken
CREATE TABLE IF NOT EXISTS frontier (
    url TEXT PRIMARY KEY NOT NULL,
    depth INTEGER NOT NULL DEFAULT 0,
    discovered_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_frontier_discovered ON frontier(discovered_at);

-- URLs rejected at admission, so a resumed crawl does not count them again
CREATE TABLE IF NOT EXISTS rejected (
    url TEXT PRIMARY KEY NOT NULL
);

-- Run id, statistics and other key/value state
CREATE TABLE IF NOT EXISTS crawl_meta (
    key TEXT PRIMARY KEY NOT NULL,
    value TEXT NOT NULL
);
`
