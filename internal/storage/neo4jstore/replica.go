package neo4jstore

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// UpsertExperience ensures a node exists for an experience so later
// relationships (INSPIRED, LED_TO) have an endpoint to attach to.
func (c *Client) UpsertExperience(ctx context.Context, userID, experienceID string, timestamp time.Time) error {
	_, err := c.writeTx(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
			MERGE (e:Experience {id: $id})
			SET e.user_id = $user_id, e.timestamp = $timestamp
		`, map[string]any{
			"id":        experienceID,
			"user_id":   userID,
			"timestamp": timestamp.Format(time.RFC3339Nano),
		})
		return nil, err
	})
	return err
}

// RecordCreationEvent mirrors one propagation step: sourceExperienceID
// inspired a creation, described by description; if ledToExperienceID is
// non-empty, that later experience is linked as the creation's outcome.
// Matches the graph sketch (:Experience)-[:INSPIRED]->(:CreationEvent)-[:LED_TO]->(:Experience).
func (c *Client) RecordCreationEvent(ctx context.Context, userID, sourceExperienceID, creationID, description string, timestamp time.Time, ledToExperienceID string) error {
	_, err := c.writeTx(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
			MERGE (src:Experience {id: $source_id})
			ON CREATE SET src.user_id = $user_id
			MERGE (ce:CreationEvent {id: $creation_id})
			SET ce.description = $description, ce.timestamp = $timestamp, ce.user_id = $user_id
			MERGE (src)-[:INSPIRED]->(ce)
		`, map[string]any{
			"source_id":   sourceExperienceID,
			"creation_id": creationID,
			"description": description,
			"timestamp":   timestamp.Format(time.RFC3339Nano),
			"user_id":     userID,
		})
		if err != nil {
			return nil, err
		}
		if ledToExperienceID == "" {
			return nil, nil
		}
		_, err = tx.Run(ctx, `
			MATCH (ce:CreationEvent {id: $creation_id})
			MERGE (dst:Experience {id: $dest_id})
			ON CREATE SET dst.user_id = $user_id
			MERGE (ce)-[:LED_TO]->(dst)
		`, map[string]any{
			"creation_id": creationID,
			"dest_id":     ledToExperienceID,
			"user_id":     userID,
		})
		return nil, err
	})
	return err
}

// LineageDepth returns the length, in relationships, of a user's longest
// INSPIRED/LED_TO path that ends at an Experience, so each
// experience -> creation -> experience hop counts 2. Purely explanatory —
// never an input to any scoring formula.
func (c *Client) LineageDepth(ctx context.Context, userID string) (int, error) {
	result, err := c.readTx(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH p = (start:Experience {user_id: $user_id})-[:INSPIRED|LED_TO*]->(end:Experience)
			WHERE NOT (end)-[:INSPIRED]->()
			RETURN max(length(p)) as depth
		`, map[string]any{"user_id": userID})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			rec := res.Record()
			v, ok := rec.Get("depth")
			if !ok || v == nil {
				return 0, nil
			}
			return int(v.(int64)), nil
		}
		return 0, res.Err()
	})
	if err != nil {
		return 0, err
	}
	depth, _ := result.(int)
	return depth, nil
}

// HasCycle reports whether a user's creation lineage loops back on itself —
// a creation eventually "led to" an experience that had already inspired an
// earlier link in the same chain. Nothing in the engine calls it; it never
// changes a score.
func (c *Client) HasCycle(ctx context.Context, userID string) (bool, error) {
	result, err := c.readTx(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (e:Experience {user_id: $user_id})-[:INSPIRED|LED_TO*2..]->(e)
			RETURN count(e) as cycles
		`, map[string]any{"user_id": userID})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			v, _ := res.Record().Get("cycles")
			count, _ := v.(int64)
			return count > 0, nil
		}
		return false, res.Err()
	})
	if err != nil {
		return false, err
	}
	has, _ := result.(bool)
	return has, nil
}
