// Package metadata is the client-side key/value persistence layer. It backs
// the session fields that must survive a process restart.
//
// # Overview
//
// Repository is the contract used by higher-level packages. Two
// implementations are provided:
//
//   - SQLiteRepository stores pairs in the local "metadata" table via a
//     dbx.DBTX (*sql.DB or *sql.Tx).
//   - RedisRepository stores pairs as plain string keys under a prefix, for
//     hosts that share one session between several client processes.
//
// A missing key is reported as (nil, nil) by Get, never as an error.
// SetMany writes all pairs atomically: a reader sees either none or all of
// them.
//
// Typical Usage
//
//	repo := metadata.NewSQLiteRepository(db)
//	_ = repo.SetMany(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")})
//	v, _ := repo.Get(ctx, "a")
package metadata
