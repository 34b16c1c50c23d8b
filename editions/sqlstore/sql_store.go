// Package sqlstore persists the ledger state and indexes ledger events in
// SQLite so the daemon can restart where it stopped and answer history
// queries.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Arkiv-Network/editions/editions/editionstore"
	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/Arkiv-Network/editions/editions/query"
	"github.com/Arkiv-Network/editions/editions/sqlstore/sqliteeditions"
	"github.com/Arkiv-Network/editions/editions/storageutil/memstate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	_ "github.com/mattn/go-sqlite3"
)

const stateSchemaVersion = uint64(1)

var ErrInvalidQuery = errors.New("invalid query")

type SQLStore struct {
	db *sql.DB
}

// TxRecord identifies the transaction a batch of changes came from.
// Editions holds the current records of the editions it touched.
type TxRecord struct {
	Hash      common.Hash
	Sender    common.Address
	Nonce     uint64
	AppliedAt time.Time
	Editions  []*editionstore.Edition
}

// HistoryEntry is an indexed ledger event with the transaction that emitted it.
type HistoryEntry struct {
	TxHash    common.Hash     `json:"txHash"`
	Sender    common.Address  `json:"sender"`
	AppliedAt time.Time       `json:"appliedAt"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
}

// NewStore opens (creating if needed) the database in dbFile.
func NewStore(dbFile string) (*SQLStore, error) {
	dir := filepath.Dir(dbFile)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=true", dbFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx := context.Background()

	stateVersion := uint64(0)

	var tableName string
	err = db.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_versions';
	`).Scan(&tableName)

	switch err {
	case sql.ErrNoRows:
		log.Info("editions: new database, no schema versions yet")
	case nil:
		err = db.QueryRowContext(ctx, `SELECT state FROM schema_versions WHERE id = 1;`).Scan(&stateVersion)
		switch err {
		case sql.ErrNoRows:
			log.Warn("editions: no schema version info found, table empty")
		case nil:
			log.Info("editions: schema versions read from database", "state", stateVersion)
		default:
			db.Close()
			return nil, fmt.Errorf("failed to check schema: %w", err)
		}
	default:
		db.Close()
		return nil, fmt.Errorf("failed to check schema: %w", err)
	}

	if stateVersion != 0 && stateVersion != stateSchemaVersion {
		db.Close()
		return nil, fmt.Errorf(
			"database schema version %d is not supported, expected %d",
			stateVersion,
			stateSchemaVersion,
		)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = sqliteeditions.ApplySchemaTx(ctx, tx)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, err
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO schema_versions (id, state) VALUES (1, ?);`,
		stateSchemaVersion,
	)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, fmt.Errorf("failed to update schema versions: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info("editions: database ready", "path", dbFile, "stateSchemaVersion", stateSchemaVersion)

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// GetQueries returns a new sqliteeditions.Queries instance for autocommit operations
func (s *SQLStore) GetQueries() *sqliteeditions.Queries {
	return sqliteeditions.New(s.db)
}

// IsEmpty reports whether no state has been persisted yet.
func (s *SQLStore) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.GetQueries().CountSlots(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count slots: %w", err)
	}
	return n == 0, nil
}

// LoadState restores every persisted slot and balance into st.
func (s *SQLStore) LoadState(ctx context.Context, st *memstate.State) error {
	q := s.GetQueries()

	slots, err := q.GetAllSlots(ctx)
	if err != nil {
		return fmt.Errorf("failed to read slots: %w", err)
	}
	for _, slot := range slots {
		st.Restore(common.HexToAddress(slot.Address), common.HexToHash(slot.Key), common.HexToHash(slot.Value))
	}

	balances, err := q.GetAllBalances(ctx)
	if err != nil {
		return fmt.Errorf("failed to read balances: %w", err)
	}
	for _, b := range balances {
		amount, err := uint256.FromDecimal(b.Amount)
		if err != nil {
			return fmt.Errorf("invalid balance %q for %s: %w", b.Amount, b.Address, err)
		}
		st.RestoreBalance(common.HexToAddress(b.Address), amount)
	}

	log.Info("editions: state loaded", "slots", len(slots), "balances", len(balances))

	return nil
}

// Commit writes changes and, when rec is set, indexes the logs under the
// transaction rec describes. Everything is written in one database
// transaction.
func (s *SQLStore) Commit(ctx context.Context, rec *TxRecord, changes *memstate.Changes) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	txDB := sqliteeditions.New(tx)

	for _, slot := range changes.Slots {
		if slot.Value == (common.Hash{}) {
			err = txDB.DeleteSlot(ctx, sqliteeditions.DeleteSlotParams{
				Address: slot.Address.Hex(),
				Key:     slot.Key.Hex(),
			})
		} else {
			err = txDB.UpsertSlot(ctx, sqliteeditions.UpsertSlotParams{
				Address: slot.Address.Hex(),
				Key:     slot.Key.Hex(),
				Value:   slot.Value.Hex(),
			})
		}
		if err != nil {
			return fmt.Errorf("failed to write slot %s: %w", slot.Key.Hex(), err)
		}
	}

	for _, b := range changes.Balances {
		if b.Amount.IsZero() {
			err = txDB.DeleteBalance(ctx, b.Address.Hex())
		} else {
			err = txDB.UpsertBalance(ctx, sqliteeditions.UpsertBalanceParams{
				Address: b.Address.Hex(),
				Amount:  b.Amount.Dec(),
			})
		}
		if err != nil {
			return fmt.Errorf("failed to write balance of %s: %w", b.Address.Hex(), err)
		}
	}

	if rec != nil {
		err = indexLogs(ctx, txDB, rec, changes.Logs)
		if err != nil {
			return err
		}

		for _, e := range rec.Editions {
			err = txDB.UpsertEdition(ctx, sqliteeditions.UpsertEditionParams{
				ID:           query.EncodeNumber(e.ID),
				MediaID:      query.EncodeNumber(e.MediaID),
				Supply:       query.EncodeNumber(e.Supply),
				Sold:         query.EncodeNumber(e.Sold),
				Price:        query.EncodeNumber(e.Price),
				Withdrawn:    query.EncodeNumber(e.Withdrawn),
				Escrowed:     query.EncodeNumber(e.Escrowed),
				FundsAddress: query.EncodeAddress(e.FundsAddress),
				Creator:      query.EncodeAddress(e.Creator),
			})
			if err != nil {
				return fmt.Errorf("failed to index edition %s: %w", e.ID.Dec(), err)
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

func indexLogs(ctx context.Context, txDB *sqliteeditions.Queries, rec *TxRecord, ls []*types.Log) error {
	seq, err := txDB.InsertTransaction(ctx, sqliteeditions.InsertTransactionParams{
		Hash:      rec.Hash.Hex(),
		Sender:    rec.Sender.Hex(),
		Nonce:     int64(rec.Nonce),
		AppliedAt: rec.AppliedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", rec.Hash.Hex(), err)
	}

	for i, l := range ls {
		ev, err := logs.Parse(l)
		if err != nil {
			return fmt.Errorf("failed to parse log %d of %s: %w", i, rec.Hash.Hex(), err)
		}

		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}

		editionID, actor := eventKeys(ev)

		err = txDB.InsertEvent(ctx, sqliteeditions.InsertEventParams{
			TxSeq:     seq,
			LogIndex:  int64(i),
			Name:      logs.Name(l.Topics[0]),
			EditionID: editionID,
			Actor:     actor,
			Data:      string(data),
		})
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	return nil
}

func editionKey(id *uint256.Int) string {
	return query.EncodeNumber(id)
}

func eventKeys(ev logs.Event) (editionID string, actor string) {
	switch ev := ev.(type) {
	case *logs.EditionCreatedEvent:
		return editionKey(ev.ID), ev.Creator.Hex()
	case *logs.EditionPurchasedEvent:
		return editionKey(ev.ID), ev.Buyer.Hex()
	case *logs.FundsWithdrawnEvent:
		return editionKey(ev.ID), ev.Recipient.Hex()
	case *logs.RegistryAddressChangedEvent:
		return "", ev.Current.Hex()
	}
	return "", ""
}

type historyRow struct {
	Hash      string
	Sender    string
	AppliedAt int64
	Name      string
	Data      string
}

func toEntries(rows []historyRow) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, HistoryEntry{
			TxHash:    common.HexToHash(r.Hash),
			Sender:    common.HexToAddress(r.Sender),
			AppliedAt: time.Unix(r.AppliedAt, 0).UTC(),
			Event:     r.Name,
			Data:      json.RawMessage(r.Data),
		})
	}
	return entries
}

// History returns every event of edition id in the order it happened.
func (s *SQLStore) History(ctx context.Context, id *uint256.Int) ([]HistoryEntry, error) {
	rows, err := s.GetQueries().GetEventsByEdition(ctx, editionKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get history of edition %s: %w", id.Dec(), err)
	}

	hr := make([]historyRow, 0, len(rows))
	for _, r := range rows {
		hr = append(hr, historyRow(r))
	}
	return toEntries(hr), nil
}

// Purchases returns every purchase made by buyer.
func (s *SQLStore) Purchases(ctx context.Context, buyer common.Address) ([]HistoryEntry, error) {
	rows, err := s.GetQueries().GetEventsByActor(ctx, sqliteeditions.GetEventsByActorParams{
		Name:  logs.Name(logs.EditionPurchased),
		Actor: buyer.Hex(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get purchases of %s: %w", buyer.Hex(), err)
	}

	hr := make([]historyRow, 0, len(rows))
	for _, r := range rows {
		hr = append(hr, historyRow(r))
	}
	return toEntries(hr), nil
}

// QueryEditions returns the ids of the editions matching q, in id order.
func (s *SQLStore) QueryEditions(ctx context.Context, q string, options query.QueryOptions) ([]*uint256.Int, error) {
	expr, err := query.Parse(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	sq, err := expr.Evaluate(options)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	log.Debug("executing query", "query", sq.Query, "args", sq.Args)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, sq.Query, sq.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get editions for query: %s: %w", sq.Query, err)
	}
	defer rows.Close()

	ids := []*uint256.Int{}
	for rows.Next() {
		var id string
		err = rows.Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to read query result: %w", err)
		}
		ids = append(ids, query.DecodeNumber(id))
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to get editions for query: %s: %w", sq.Query, err)
	}

	return ids, nil
}
