package sqlite

// Timestamps are unix nanoseconds so they round-trip without relying on the
// driver's time parsing.
const schema = `
-- Recorded search runs
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    zero_count INTEGER NOT NULL CHECK(zero_count >= 0),
    quota INTEGER NOT NULL CHECK(quota >= 0),
    algorithm TEXT NOT NULL,
    step_size INTEGER NOT NULL,
    workers INTEGER NOT NULL,
    mode TEXT NOT NULL,
    contiguous INTEGER NOT NULL DEFAULT 0,
    exhausted INTEGER NOT NULL DEFAULT 0,
    cancelled INTEGER NOT NULL DEFAULT 0,
    windows INTEGER NOT NULL DEFAULT 0,
    candidates INTEGER NOT NULL DEFAULT 0,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

-- Matches of each run, in discovery order
CREATE TABLE IF NOT EXISTS matches (
    run_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    candidate INTEGER NOT NULL,
    digest TEXT NOT NULL,
    PRIMARY KEY (run_id, seq),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_matches_candidate ON matches(candidate);
`
