package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/mentis/helper"
	"github.com/siherrmann/mentis/model"
	loadSql "github.com/siherrmann/mentis/sql"
)

// ConnectionsDBHandlerFunctions defines the interface for Connections database operations.
type ConnectionsDBHandlerFunctions interface {
	InsertConnection(connection *model.Connection) error
	SelectConnection(id uuid.UUID) (*model.Connection, error)
	SelectConnectionsBySource(userID string, sourceID string) ([]*model.Connection, error)
	SelectConnections(userID string, limit int) ([]*model.Connection, error)
	CountConnections(userID string) (int64, error)
	DeleteConnections(userID string) (int64, error)
}

// ConnectionsDBHandler handles connection-related database operations
type ConnectionsDBHandler struct {
	db *helper.Database
}

// NewConnectionsDBHandler creates a new connections database handler.
// It initializes the database connection and loads connection-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewConnectionsDBHandler(db *helper.Database, force bool) (*ConnectionsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	connectionsDbHandler := &ConnectionsDBHandler{
		db: db,
	}

	err := loadSql.LoadConnectionsSql(connectionsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load connections sql", err)
	}

	err = connectionsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ConnectionsDBHandler")

	return connectionsDbHandler, nil
}

// CreateTable creates the 'connections' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *ConnectionsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_connections();`)
	if err != nil {
		log.Panicf("error initializing connections table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table connections")

	return nil
}

// InsertConnection inserts a new connection
func (h *ConnectionsDBHandler) InsertConnection(connection *model.Connection) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_connection($1, $2, $3, $4, $5)`,
		connection.SourceID,
		connection.TargetID,
		connection.Type,
		connection.UserID,
		connection.Metadata,
	)

	err := row.Scan(
		&connection.ID,
		&connection.SourceID,
		&connection.TargetID,
		&connection.Type,
		&connection.UserID,
		&connection.Metadata,
		&connection.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectConnection retrieves a connection by ID
func (h *ConnectionsDBHandler) SelectConnection(id uuid.UUID) (*model.Connection, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_connection($1)`,
		id,
	)

	connection := &model.Connection{}
	err := row.Scan(
		&connection.ID,
		&connection.SourceID,
		&connection.TargetID,
		&connection.Type,
		&connection.UserID,
		&connection.Metadata,
		&connection.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return connection, nil
}

// SelectConnectionsBySource retrieves all connections originating from the
// given source object, ordered by creation time.
func (h *ConnectionsDBHandler) SelectConnectionsBySource(userID string, sourceID string) ([]*model.Connection, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_connections_by_source($1, $2)`,
		userID,
		sourceID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var connections []*model.Connection
	for rows.Next() {
		connection := &model.Connection{}
		err := rows.Scan(
			&connection.ID,
			&connection.SourceID,
			&connection.TargetID,
			&connection.Type,
			&connection.UserID,
			&connection.Metadata,
			&connection.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		connections = append(connections, connection)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return connections, nil
}

// SelectConnections retrieves connections for a user, ordered by creation time.
func (h *ConnectionsDBHandler) SelectConnections(userID string, limit int) ([]*model.Connection, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_connections($1, $2)`,
		userID,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var connections []*model.Connection
	for rows.Next() {
		connection := &model.Connection{}
		err := rows.Scan(
			&connection.ID,
			&connection.SourceID,
			&connection.TargetID,
			&connection.Type,
			&connection.UserID,
			&connection.Metadata,
			&connection.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		connections = append(connections, connection)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return connections, nil
}

// CountConnections returns the number of connections for a user.
func (h *ConnectionsDBHandler) CountConnections(userID string) (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(
		`SELECT count_connections($1)`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// DeleteConnections deletes all connections for a user and returns the
// number of deleted rows.
func (h *ConnectionsDBHandler) DeleteConnections(userID string) (int64, error) {
	var deleted int64
	err := h.db.Instance.QueryRow(
		`SELECT delete_connections($1)`,
		userID,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}
