// Package debate orchestrates structured debates between specialist roles:
// position collection, rebuttals, weighted voting and resolution by majority
// or compromise.
package debate

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"

	"github.com/BaSui01/retailflow/authority"
	"github.com/BaSui01/retailflow/oracle"
	"github.com/BaSui01/retailflow/types"
)

// State is a debate's lifecycle stage. Stages advance strictly in order;
// every stage completes for all participants before the next begins.
type State string

const (
	StateInitiated          State = "initiated"
	StatePositionsCollected State = "positions_collected"
	StateRebuttalsCollected State = "rebuttals_collected"
	StateVotesTallied       State = "votes_tallied"
	StateResolved           State = "resolved"
)

var stateOrder = map[State]State{
	StateInitiated:          StatePositionsCollected,
	StatePositionsCollected: StateRebuttalsCollected,
	StateRebuttalsCollected: StateVotesTallied,
	StateVotesTallied:       StateResolved,
}

// Config configures the debate engine.
type Config struct {
	MaxParticipants        int     `json:"max_participants" yaml:"max_participants" env:"MAX_PARTICIPANTS"`
	MinParticipants        int     `json:"min_participants" yaml:"min_participants" env:"MIN_PARTICIPANTS"`
	RebuttalScoreThreshold float64 `json:"rebuttal_score_threshold" yaml:"rebuttal_score_threshold" env:"REBUTTAL_SCORE_THRESHOLD"`
	MaxRebuttalTargets     int     `json:"max_rebuttal_targets" yaml:"max_rebuttal_targets" env:"MAX_REBUTTAL_TARGETS"`
	CompromiseConfidence   float64 `json:"compromise_confidence" yaml:"compromise_confidence" env:"COMPROMISE_CONFIDENCE"`
}

// DefaultConfig returns the standard debate parameters.
func DefaultConfig() Config {
	return Config{
		MaxParticipants:        5,
		MinParticipants:        3,
		RebuttalScoreThreshold: 0.5,
		MaxRebuttalTargets:     2,
		CompromiseConfidence:   0.6,
	}
}

// Request describes the debate to run.
type Request struct {
	Topic      Topic
	Status     types.StoreStatus
	Triggering []types.Decision
}

// Ballot is one participant's vote.
type Ballot struct {
	Voter     types.Role `json:"voter"`
	Candidate types.Role `json:"candidate"`
	Score     float64    `json:"score"`
}

// Compromise is the fallback outcome when no position wins a majority.
type Compromise struct {
	Statement  string  `json:"statement"`
	Value      float64 `json:"value,omitempty"`
	HasValue   bool    `json:"has_value"`
	Confidence float64 `json:"confidence"`
}

// Resolution is the full outcome of a debate.
type Resolution struct {
	Topic             Topic             `json:"topic"`
	State             State             `json:"state"`
	Participants      []types.Role      `json:"participants"`
	Positions         []oracle.Position `json:"positions"`
	Rebuttals         []oracle.Rebuttal `json:"rebuttals,omitempty"`
	Ballots           []Ballot          `json:"ballots"`
	ConsensusAchieved bool              `json:"consensus_achieved"`
	Winner            *oracle.Position  `json:"winner,omitempty"`
	Compromise        *Compromise       `json:"compromise,omitempty"`
	Summary           string            `json:"summary"`
}

// Record is one history entry.
type Record struct {
	ID           string       `json:"id"`
	Sequence     int          `json:"sequence"`
	Topic        Topic        `json:"topic"`
	Participants []types.Role `json:"participants"`
	Consensus    bool         `json:"consensus"`
	Summary      string       `json:"summary"`
}

// Engine runs debates. It is safe for sequential reuse across rounds; the
// history is guarded for concurrent readers.
type Engine struct {
	config Config
	oracle oracle.Oracle
	logger *zap.Logger

	mu      sync.Mutex
	history []Record
}

// NewEngine creates a debate engine. The oracle may be nil, in which case
// every participant argues from the neutral default position. Nil logger
// falls back to a no-op logger.
func NewEngine(config Config, orc oracle.Oracle, logger *zap.Logger) *Engine {
	def := DefaultConfig()
	if config.MaxParticipants <= 0 {
		config.MaxParticipants = def.MaxParticipants
	}
	if config.MinParticipants <= 0 {
		config.MinParticipants = def.MinParticipants
	}
	if config.RebuttalScoreThreshold <= 0 {
		config.RebuttalScoreThreshold = def.RebuttalScoreThreshold
	}
	if config.MaxRebuttalTargets <= 0 {
		config.MaxRebuttalTargets = def.MaxRebuttalTargets
	}
	if config.CompromiseConfidence <= 0 {
		config.CompromiseConfidence = def.CompromiseConfidence
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		config: config,
		oracle: orc,
		logger: logger.With(zap.String("component", "debate_engine")),
	}
}

// Run executes a full debate and returns its resolution. Oracle failures
// degrade individual participants to the neutral default; the debate itself
// always resolves.
func (e *Engine) Run(ctx context.Context, req Request) Resolution {
	res := Resolution{
		Topic:        req.Topic,
		State:        StateInitiated,
		Participants: e.SelectParticipants(req.Topic, req.Triggering),
	}
	e.logger.Info("debate initiated",
		zap.String("topic", string(req.Topic)),
		zap.Int("participants", len(res.Participants)))

	res.Positions = e.collectPositions(ctx, req, res.Participants)
	res.State = e.advance(res.State)

	res.Rebuttals = e.collectRebuttals(ctx, req, res.Positions)
	res.State = e.advance(res.State)

	res.Ballots = e.castBallots(req.Topic, res.Positions)
	res.State = e.advance(res.State)

	e.resolve(ctx, req, &res)
	res.State = e.advance(res.State)

	e.record(res)
	return res
}

func (e *Engine) advance(s State) State {
	next, ok := stateOrder[s]
	if !ok {
		return s
	}
	return next
}

// SelectParticipants seats the topic's stakeholders plus the authors of the
// triggering decisions, padded to the minimum in fixed role order and capped
// at the maximum.
func (e *Engine) SelectParticipants(topic Topic, triggering []types.Decision) []types.Role {
	participants := topic.Stakeholders()
	seated := make(map[types.Role]bool, len(participants))
	for _, r := range participants {
		seated[r] = true
	}
	for _, d := range triggering {
		if d.Role.Valid() && !seated[d.Role] {
			participants = append(participants, d.Role)
			seated[d.Role] = true
		}
	}
	for _, r := range types.AllRoles() {
		if len(participants) >= e.config.MinParticipants {
			break
		}
		if !seated[r] {
			participants = append(participants, r)
			seated[r] = true
		}
	}
	if len(participants) > e.config.MaxParticipants {
		participants = participants[:e.config.MaxParticipants]
	}
	return participants
}

// collectPositions fans out position generation across participants and
// joins before returning. Each failure degrades that participant to the
// neutral default.
func (e *Engine) collectPositions(ctx context.Context, req Request, participants []types.Role) []oracle.Position {
	positions := make([]oracle.Position, len(participants))
	g, gctx := errgroup.WithContext(ctx)
	for i, role := range participants {
		i, role := i, role
		g.Go(func() error {
			if e.oracle == nil {
				positions[i] = oracle.DefaultPosition(role)
				return nil
			}
			pos, err := e.oracle.GeneratePosition(gctx, oracle.PositionRequest{
				Role:       role,
				Topic:      req.Topic.Description(),
				Status:     req.Status,
				Triggering: req.Triggering,
			})
			if err != nil {
				e.logger.Warn("position generation failed, using default",
					zap.String("role", string(role)), zap.Error(err))
				pos = oracle.DefaultPosition(role)
			}
			positions[i] = pos
			return nil
		})
	}
	_ = g.Wait()
	return positions
}

// rebuttalTargets picks up to MaxRebuttalTargets opposing positions, highest
// tension first. Tension is stance distance plus the magnitude of a negative
// relationship; only pairs above the threshold rebut at all.
func (e *Engine) rebuttalTargets(from oracle.Position, all []oracle.Position) []oracle.Position {
	type scored struct {
		pos   oracle.Position
		score float64
	}
	var candidates []scored
	for _, other := range all {
		if other.Role == from.Role {
			continue
		}
		score := oracle.StanceDistance(from.Stance, other.Stance)
		if rel := Relationship(from.Role, other.Role); rel < 0 {
			score += -rel
		}
		if score > e.config.RebuttalScoreThreshold {
			candidates = append(candidates, scored{other, score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > e.config.MaxRebuttalTargets {
		candidates = candidates[:e.config.MaxRebuttalTargets]
	}
	targets := make([]oracle.Position, len(candidates))
	for i, c := range candidates {
		targets[i] = c.pos
	}
	return targets
}

func (e *Engine) collectRebuttals(ctx context.Context, req Request, positions []oracle.Position) []oracle.Rebuttal {
	if e.oracle == nil {
		return nil
	}

	type pair struct{ from, target oracle.Position }
	var pairs []pair
	for _, pos := range positions {
		for _, target := range e.rebuttalTargets(pos, positions) {
			pairs = append(pairs, pair{pos, target})
		}
	}

	rebuttals := make([]oracle.Rebuttal, len(pairs))
	ok := make([]bool, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			reb, err := e.oracle.GenerateRebuttal(gctx, oracle.RebuttalRequest{
				From:   p.from,
				Target: p.target,
				Topic:  req.Topic.Description(),
				Status: req.Status,
			})
			if err != nil {
				e.logger.Warn("rebuttal generation failed, skipping",
					zap.String("from", string(p.from.Role)),
					zap.String("target", string(p.target.Role)),
					zap.Error(err))
				return nil
			}
			rebuttals[i] = reb
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var out []oracle.Rebuttal
	for i, r := range rebuttals {
		if ok[i] {
			out = append(out, r)
		}
	}
	return out
}

// castBallots has every participant vote exactly once. A voter backs itself
// at half its own confidence and switches to any candidate scoring higher on
// confidence, positive relationship, topic expertise and conviction. Ties go
// to the candidate earlier in the fixed arbitration order.
func (e *Engine) castBallots(topic Topic, positions []oracle.Position) []Ballot {
	ballots := make([]Ballot, 0, len(positions))
	for _, voter := range positions {
		best := voter.Role
		bestScore := voter.Confidence * 0.5

		for _, candidate := range positions {
			if candidate.Role == voter.Role {
				continue
			}
			score := candidate.Confidence * 0.5
			if rel := Relationship(voter.Role, candidate.Role); rel > 0 {
				score += rel * 0.3
			}
			score += authority.ExpertiseBonus(candidate.Role, topic.Domain())
			if candidate.Stance.Extreme() {
				score += 0.1
			}
			if score > bestScore ||
				(score == bestScore && candidate.Role.TieBreakRank() < best.TieBreakRank()) {
				best = candidate.Role
				bestScore = score
			}
		}
		ballots = append(ballots, Ballot{Voter: voter.Role, Candidate: best, Score: bestScore})
	}
	return ballots
}

func (e *Engine) resolve(ctx context.Context, req Request, res *Resolution) {
	counts := make(map[types.Role]int)
	for _, b := range res.Ballots {
		counts[b.Candidate]++
	}

	var winner types.Role
	winnerVotes := -1
	for candidate, n := range counts {
		if n > winnerVotes ||
			(n == winnerVotes && candidate.TieBreakRank() < winner.TieBreakRank()) {
			winner = candidate
			winnerVotes = n
		}
	}

	total := len(res.Ballots)
	if winnerVotes*2 > total {
		res.ConsensusAchieved = true
		for i := range res.Positions {
			if res.Positions[i].Role == winner {
				res.Winner = &res.Positions[i]
				break
			}
		}
		res.Summary = fmt.Sprintf("%s won consensus on %s with %d/%d votes",
			winner.Persona(), res.Topic, winnerVotes, total)
		e.logger.Info("debate resolved by consensus",
			zap.String("topic", string(res.Topic)),
			zap.String("winner", string(winner)),
			zap.Int("votes", winnerVotes),
			zap.Int("total", total))
		return
	}

	res.Compromise = e.buildCompromise(ctx, req, res.Positions)
	res.Summary = fmt.Sprintf("no consensus on %s, compromise adopted: %s",
		res.Topic, res.Compromise.Statement)
	e.logger.Info("debate resolved by compromise",
		zap.String("topic", string(res.Topic)),
		zap.String("statement", res.Compromise.Statement))
}

// buildCompromise averages the numeric proposals when at least two positions
// name a concrete price or quantity, otherwise blends the statements
// qualitatively (via the oracle when available).
func (e *Engine) buildCompromise(ctx context.Context, req Request, positions []oracle.Position) *Compromise {
	c := &Compromise{Confidence: e.config.CompromiseConfidence}

	var values []float64
	for _, pos := range positions {
		if v, ok := firstNumeric(pos.Statement); ok {
			values = append(values, v)
		}
	}
	if len(values) >= 2 {
		var sum float64
		for _, v := range values {
			sum += v
		}
		c.Value = sum / float64(len(values))
		c.HasValue = true
		c.Statement = fmt.Sprintf("meet in the middle at %.2f", c.Value)
		return c
	}

	if e.oracle != nil {
		if statement, err := e.oracle.GenerateCompromise(ctx, oracle.CompromiseRequest{
			Topic:     req.Topic.Description(),
			Positions: positions,
			Status:    req.Status,
		}); err == nil && statement != "" {
			c.Statement = statement
			return c
		}
	}

	var fragments []string
	for _, pos := range positions {
		if pos.Statement != "" {
			fragments = append(fragments, pos.Statement)
		}
	}
	c.Statement = "balance all concerns: " + strings.Join(fragments, "; ")
	return c
}

func (e *Engine) record(res Resolution) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, Record{
		ID:           uuid.NewString(),
		Sequence:     len(e.history) + 1,
		Topic:        res.Topic,
		Participants: res.Participants,
		Consensus:    res.ConsensusAchieved,
		Summary:      res.Summary,
	})
}

// History returns a copy of all recorded debates, oldest first.
func (e *Engine) History() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Record, len(e.history))
	copy(out, e.history)
	return out
}

var (
	dollarPattern = regexp.MustCompile(`\$(\d+(?:\.\d+)?)`)
	numberPattern = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\b`)
)

// firstNumeric pulls the first concrete number out of a statement, preferring
// dollar amounts over bare quantities.
func firstNumeric(text string) (float64, bool) {
	if m := dollarPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	if m := numberPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
