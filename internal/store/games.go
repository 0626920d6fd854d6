package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InsertGame inserts one games row and its move rows in a single
// transaction. On success g.ID and every move's ID and GameID are set;
// on failure nothing is written.
func (s *Store) InsertGame(ctx context.Context, g *Game, moves []Move) error {
	return s.Transaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, s.schema.insertSQL(), s.schema.insertArgs(g)...)
		if err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}

		gameID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get game ID: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO moves (game_id, move_number, white_move, black_move)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare move insert: %w", err)
		}
		defer stmt.Close()

		for i := range moves {
			m := &moves[i]
			res, err := stmt.ExecContext(ctx, gameID, m.MoveNumber, m.WhiteMove, m.BlackMove)
			if err != nil {
				return fmt.Errorf("failed to insert move %d: %w", m.MoveNumber, err)
			}
			if m.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get move ID: %w", err)
			}
			m.GameID = gameID
		}

		g.ID = gameID
		return nil
	})
}

// GetGame retrieves a game by ID, or nil if it does not exist
func (s *Store) GetGame(id int64) (*Game, error) {
	g := &Game{}
	err := s.db.QueryRow(
		"SELECT "+s.schema.selectList()+" FROM games WHERE id = ?", id,
	).Scan(s.schema.scanDest(g)...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return g, nil
}

// GetMoves returns the moves of a game ordered by move number
func (s *Store) GetMoves(gameID int64) ([]Move, error) {
	rows, err := s.db.Query(`
		SELECT id, game_id, move_number, white_move, black_move
		FROM moves
		WHERE game_id = ?
		ORDER BY move_number
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query moves: %w", err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var m Move
		if err := rows.Scan(&m.ID, &m.GameID, &m.MoveNumber, &m.WhiteMove, &m.BlackMove); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		moves = append(moves, m)
	}

	return moves, rows.Err()
}

// GameIDs returns every game ID in insertion order
func (s *Store) GameIDs() ([]int64, error) {
	rows, err := s.db.Query("SELECT id FROM games ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CountGames returns the number of rows in the games table
func (s *Store) CountGames() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM games").Scan(&count)
	return count, err
}

// CountMoves returns the number of rows in the moves table
func (s *Store) CountMoves() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM moves").Scan(&count)
	return count, err
}
