package storage

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jKV keeps each key as an (:Entry {key, value}) node.
type Neo4jKV struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jKV verifies connectivity and ensures the Entry.key uniqueness constraint.
// The driver is closed if either step fails.
func NewNeo4jKV(ctx context.Context, driver neo4j.DriverWithContext) (*Neo4jKV, error) {
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"CREATE CONSTRAINT entry_key IF NOT EXISTS FOR (e:Entry) REQUIRE e.key IS UNIQUE",
			nil,
		)
		return nil, err
	})
	if err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	return &Neo4jKV{driver: driver}, nil
}

func (s *Neo4jKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (e:Entry {key: $key}) RETURN e.value AS value",
			map[string]any{"key": key},
		)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			value, _ := res.Record().Get("value")
			str, ok := value.(string)
			if !ok {
				return nil, errors.New("neo4j: entry value is not a string")
			}
			return &str, nil
		}
		return nil, res.Err()
	})
	if err != nil {
		return nil, false, err
	}

	value, _ := result.(*string)
	if value == nil {
		return nil, false, nil
	}
	return []byte(*value), true, nil
}

func (s *Neo4jKV) Put(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"MERGE (e:Entry {key: $key}) SET e.value = $value",
			map[string]any{
				"key":   key,
				"value": string(value),
			},
		)
		return nil, err
	})
	return err
}

func (s *Neo4jKV) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
