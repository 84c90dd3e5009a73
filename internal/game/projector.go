package game

import "sort"

// Phase is the coarse game phase presented to viewers
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseJudging  Phase = "judging"
	PhaseRoundEnd Phase = "round_end"
	PhaseGameEnd  Phase = "game_end"
)

// CardView is a card as shown to a viewer
type CardView struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Pick    int    `json:"pick,omitempty"`
	Draw    int    `json:"draw,omitempty"`
}

// PlayerView is a player as shown to every viewer. Hands are never
// included here: other players see a count, nothing more.
type PlayerView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SeatNumber   int    `json:"seatNumber"`
	Score        int    `json:"score"`
	IsActive     bool   `json:"isActive"`
	IsAdmin      bool   `json:"isAdmin"`
	IsCzar       bool   `json:"isCzar"`
	HasSubmitted bool   `json:"hasSubmitted"`
	HandCount    int    `json:"handCount"`
}

// SubmissionView is a round answer as shown to a viewer. PlayerID and
// PlayerName stay empty until the round completes: submissions are
// anonymous while the czar is judging.
type SubmissionView struct {
	ID         string     `json:"id"`
	Cards      []CardView `json:"cards"`
	PlayerID   string     `json:"playerId,omitempty"`
	PlayerName string     `json:"playerName,omitempty"`
	IsWinner   bool       `json:"isWinner"`
}

// RoundView is the current round as shown to a viewer
type RoundView struct {
	ID              string           `json:"id"`
	RoundNumber     int              `json:"roundNumber"`
	Status          string           `json:"status"`
	BlackCard       CardView         `json:"blackCard"`
	Pick            int              `json:"pick"`
	CzarPlayerID    string           `json:"czarPlayerId"`
	CzarName        string           `json:"czarName"`
	SubmissionCount int              `json:"submissionCount"`
	Submissions     []SubmissionView `json:"submissions,omitempty"`
}

// ViewerView is the private slice of the view: the viewer's own hand
// and what they may do right now.
type ViewerView struct {
	PlayerID     string     `json:"playerId"`
	IsCzar       bool       `json:"isCzar"`
	CanSubmit    bool       `json:"canSubmit"`
	HasSubmitted bool       `json:"hasSubmitted"`
	Hand         []CardView `json:"hand"`
}

// View is a point-in-time projection of a game for one viewer
type View struct {
	GameID        string       `json:"gameId"`
	Name          string       `json:"name"`
	Status        string       `json:"status"`
	Phase         Phase        `json:"phase"`
	WinningScore  int          `json:"winningScore"`
	RoundsPlayed  int          `json:"roundsPlayed"`
	DrawPileWhite int          `json:"drawPileWhite"`
	DrawPileBlack int          `json:"drawPileBlack"`
	Players       []PlayerView `json:"players"`
	Round         *RoundView   `json:"round,omitempty"`
	Viewer        *ViewerView  `json:"viewer,omitempty"`
}

// Project computes the view of a game for the given viewer. Pass an
// empty or unknown player ID for the spectator view. Pure query: never
// mutates state.
func Project(s *State, viewerPlayerID string) *View {
	round := s.CurrentRound()
	viewer := s.Player(viewerPlayerID)

	view := &View{
		GameID:       s.Game.ID,
		Name:         s.Game.Name,
		Status:       s.Game.Status.String(),
		Phase:        derivePhase(s, round),
		WinningScore: s.Game.WinningScore,
		RoundsPlayed: len(s.Rounds),
	}
	for _, c := range s.Cards {
		if c.State == CardInDrawPile {
			if c.Card.IsBlack() {
				view.DrawPileBlack++
			} else {
				view.DrawPileWhite++
			}
		}
	}

	players := make([]*Player, len(s.Players))
	copy(players, s.Players)
	sort.Slice(players, func(i, j int) bool {
		return players[i].SeatNumber < players[j].SeatNumber
	})
	for _, p := range players {
		pv := PlayerView{
			ID:         p.ID,
			Name:       p.Name,
			SeatNumber: p.SeatNumber,
			Score:      p.Score,
			IsActive:   p.IsActive,
			IsAdmin:    p.IsAdmin,
			HandCount:  len(s.Hand(p.ID)),
		}
		if round != nil {
			pv.IsCzar = round.CzarPlayerID == p.ID
			pv.HasSubmitted = s.SubmissionBy(round.ID, p.ID) != nil
		}
		view.Players = append(view.Players, pv)
	}

	if round != nil {
		view.Round = projectRound(s, round)
	} else if last := s.LastRound(); last != nil {
		view.Round = projectRound(s, last)
	}

	if viewer != nil {
		vv := &ViewerView{PlayerID: viewer.ID}
		for _, gc := range s.Hand(viewer.ID) {
			vv.Hand = append(vv.Hand, cardView(gc))
		}
		if round != nil {
			vv.IsCzar = round.CzarPlayerID == viewer.ID
			vv.HasSubmitted = s.SubmissionBy(round.ID, viewer.ID) != nil
			vv.CanSubmit = round.Status == RoundCollecting &&
				!vv.IsCzar && !vv.HasSubmitted && viewer.IsActive
		}
		view.Viewer = vv
	}

	return view
}

// derivePhase maps game and round status onto the coarse phase
func derivePhase(s *State, round *Round) Phase {
	switch s.Game.Status {
	case StatusLobby:
		return PhaseLobby
	case StatusCompleted, StatusCancelled:
		return PhaseGameEnd
	}
	if round == nil {
		if len(s.Rounds) > 0 {
			return PhaseRoundEnd
		}
		return PhasePlaying
	}
	if round.Status == RoundJudging {
		return PhaseJudging
	}
	return PhasePlaying
}

// projectRound renders the round with the visibility rules: submission
// contents appear once judging starts, attribution only once the round
// completes. Ordering by submission ID decorrelates display order from
// submission order so the czar cannot infer who answered first.
func projectRound(s *State, round *Round) *RoundView {
	rv := &RoundView{
		ID:           round.ID,
		RoundNumber:  round.RoundNumber,
		Status:       round.Status.String(),
		Pick:         round.Pick,
		CzarPlayerID: round.CzarPlayerID,
		BlackCard: CardView{
			ID:      round.BlackCard.ID,
			Content: round.BlackCard.Content,
			Type:    round.BlackCard.Type.String(),
			Pick:    round.Pick,
			Draw:    round.Draw,
		},
	}
	if czar := s.Player(round.CzarPlayerID); czar != nil {
		rv.CzarName = czar.Name
	}

	subs := s.RoundSubmissions(round.ID)
	rv.SubmissionCount = len(subs)
	if round.Status == RoundCollecting {
		return rv
	}

	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	revealed := round.Status == RoundCompleted
	for _, sub := range subs {
		sv := SubmissionView{ID: sub.ID, IsWinner: revealed && sub.IsWinner}
		for _, cardID := range sub.CardIDs {
			if gc := s.CardByID(cardID); gc != nil {
				sv.Cards = append(sv.Cards, cardView(gc))
			}
		}
		if revealed {
			sv.PlayerID = sub.PlayerID
			if p := s.Player(sub.PlayerID); p != nil {
				sv.PlayerName = p.Name
			}
		}
		rv.Submissions = append(rv.Submissions, sv)
	}
	return rv
}

func cardView(gc *GameCard) CardView {
	return CardView{
		ID:      gc.ID,
		Content: gc.Card.Content,
		Type:    gc.Card.Type.String(),
	}
}
