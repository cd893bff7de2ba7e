package scoringconfig

import (
	"context"
	_ "embed"
	"fmt"
	"github.com/linkforge/linkforge-backend/internal/logger"
	"github.com/linkforge/linkforge-backend/internal/repos"
	"github.com/linkforge/linkforge-backend/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Tunables are the general knobs every batch run reads.
type Tunables struct {
	HalfLifeDays             float64
	ReciprocityThreshold     float64 // fraction of interactions that must be reciprocal before the bonus kicks in
	ReciprocityMultiplierMin float64
	ReciprocityMultiplierMax float64
}

// Snapshot is an immutable view of the scoring_config table, loaded fresh at
// the start of each batch run so operator edits take effect the next run.
type Snapshot struct {
	RelationshipWeights  map[string]float64
	PriorityWeights      map[string]float64
	SeniorityMultipliers map[string]float64
	Tunables             Tunables
}

// RelationshipWeight returns 0 for unknown interaction types; a bad type in
// the log degrades the score instead of failing the batch.
func (s *Snapshot) RelationshipWeight(interactionType string) float64 {
	return s.RelationshipWeights[interactionType]
}

func (s *Snapshot) PriorityWeight(dimension string, fallback float64) float64 {
	if v, ok := s.PriorityWeights[dimension]; ok {
		return v
	}
	return fallback
}

func (s *Snapshot) SeniorityMultiplier(level string) float64 {
	if v, ok := s.SeniorityMultipliers[level]; ok {
		return v
	}
	return 1.0
}

type defaultsFile struct {
	RelationshipWeights map[string]float64 `yaml:"relationship_weights"`
	PriorityWeights     map[string]float64 `yaml:"priority_weights"`
	General             map[string]float64 `yaml:"general"`
}

func parseDefaults() (*defaultsFile, error) {
	var f defaultsFile
	if err := yaml.Unmarshal(defaultsYAML, &f); err != nil {
		return nil, fmt.Errorf("parse embedded scoring defaults: %w", err)
	}
	return &f, nil
}

// DefaultSnapshot builds a snapshot purely from the embedded defaults.
func DefaultSnapshot() *Snapshot {
	f, err := parseDefaults()
	if err != nil {
		// The embedded file is fixed at build time; a parse failure is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return snapshotFrom(f.RelationshipWeights, f.PriorityWeights, f.General)
}

// SeedRows converts the embedded defaults into scoring_config rows for the
// insert-if-missing seed at startup.
func SeedRows() ([]*types.ScoringConfig, error) {
	f, err := parseDefaults()
	if err != nil {
		return nil, err
	}
	var rows []*types.ScoringConfig
	for key, value := range f.RelationshipWeights {
		rows = append(rows, &types.ScoringConfig{ConfigType: types.ConfigTypeRelationshipWeight, Key: key, Value: value})
	}
	for key, value := range f.PriorityWeights {
		rows = append(rows, &types.ScoringConfig{ConfigType: types.ConfigTypePriorityWeight, Key: key, Value: value})
	}
	for key, value := range f.General {
		rows = append(rows, &types.ScoringConfig{ConfigType: types.ConfigTypeGeneral, Key: key, Value: value})
	}
	return rows, nil
}

type Loader struct {
	repo repos.ScoringConfigRepo
	log  *logger.Logger
}

func NewLoader(repo repos.ScoringConfigRepo, baseLog *logger.Logger) *Loader {
	return &Loader{repo: repo, log: baseLog.With("component", "ScoringConfigLoader")}
}

// Load reads all scoring_config rows and overlays them on the embedded
// defaults, so a partially seeded table still yields a usable snapshot.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	snap := DefaultSnapshot()
	rows, err := l.repo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load scoring config: %w", err)
	}
	for _, row := range rows {
		switch row.ConfigType {
		case types.ConfigTypeRelationshipWeight:
			snap.RelationshipWeights[row.Key] = row.Value
		case types.ConfigTypePriorityWeight:
			snap.PriorityWeights[row.Key] = row.Value
		case types.ConfigTypeGeneral:
			snap.applyGeneral(row.Key, row.Value)
		default:
			l.log.Warn("Unknown config_type in scoring_config, skipping", "config_type", row.ConfigType, "key", row.Key)
		}
	}
	return snap, nil
}

// Seed inserts any missing default rows.
func (l *Loader) Seed(ctx context.Context) error {
	rows, err := SeedRows()
	if err != nil {
		return err
	}
	return l.repo.SeedDefaults(ctx, nil, rows)
}

func snapshotFrom(relWeights, prioWeights, general map[string]float64) *Snapshot {
	snap := &Snapshot{
		RelationshipWeights:  make(map[string]float64, len(relWeights)),
		PriorityWeights:      make(map[string]float64, len(prioWeights)),
		SeniorityMultipliers: map[string]float64{},
	}
	for k, v := range relWeights {
		snap.RelationshipWeights[k] = v
	}
	for k, v := range prioWeights {
		snap.PriorityWeights[k] = v
	}
	for k, v := range general {
		snap.applyGeneral(k, v)
	}
	return snap
}

func (s *Snapshot) applyGeneral(key string, value float64) {
	switch key {
	case types.ConfigKeyHalfLifeDays:
		s.Tunables.HalfLifeDays = value
	case types.ConfigKeyReciprocityThreshold:
		s.Tunables.ReciprocityThreshold = value
	case types.ConfigKeyReciprocityMultiplierMin:
		s.Tunables.ReciprocityMultiplierMin = value
	case types.ConfigKeyReciprocityMultiplierMax:
		s.Tunables.ReciprocityMultiplierMax = value
	case types.ConfigKeySeniorityCSuite:
		s.SeniorityMultipliers[types.SeniorityCSuite] = value
	case types.ConfigKeySeniorityVP:
		s.SeniorityMultipliers[types.SeniorityVP] = value
	case types.ConfigKeySeniorityDirector:
		s.SeniorityMultipliers[types.SeniorityDirector] = value
	case types.ConfigKeySeniorityManager:
		s.SeniorityMultipliers[types.SeniorityManager] = value
	case types.ConfigKeySeniorityIC:
		s.SeniorityMultipliers[types.SeniorityIC] = value
	}
}
