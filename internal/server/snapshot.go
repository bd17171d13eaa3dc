package server

type playerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
	AFK   bool   `json:"afk"`
	Host  bool   `json:"host"`
}

type submissionInfo struct {
	PlayerID  string     `json:"player_id"`
	Photo     string     `json:"photo"`
	Timestamp int64      `json:"timestamp"`
	Votes     []voteInfo `json:"votes"`
}

type voteInfo struct {
	VoterID string `json:"voter_id"`
	Choice  string `json:"choice"`
}

func rosterPayload(r *Room) map[string]any {
	players := make([]playerInfo, 0, len(r.Players))
	for i := range r.Players {
		players = append(players, playerInfo{
			ID:    r.Players[i].ID,
			Name:  r.Players[i].Name,
			Ready: r.Players[i].Ready,
			AFK:   r.Players[i].AFK,
			Host:  i == 0,
		})
	}
	return map[string]any{
		"room_code": r.Code,
		"players":   players,
	}
}

func submissionsPayload(r *Room) []submissionInfo {
	subs := make([]submissionInfo, 0, len(r.Submissions))
	for i := range r.Submissions {
		sub := &r.Submissions[i]
		votes := make([]voteInfo, 0, len(sub.Votes))
		for _, vote := range sub.Votes {
			votes = append(votes, voteInfo{VoterID: vote.VoterID, Choice: vote.Choice})
		}
		subs = append(subs, submissionInfo{
			PlayerID:  sub.PlayerID,
			Photo:     sub.Photo,
			Timestamp: sub.SubmittedAt,
			Votes:     votes,
		})
	}
	return subs
}

func scoresPayload(r *Room) map[string]int {
	scores := make(map[string]int, len(r.Scores))
	for id, score := range r.Scores {
		scores[id] = score
	}
	return scores
}

func avatarsPayload(r *Room) map[string]string {
	avatars := make(map[string]string, len(r.Avatars))
	for id, avatar := range r.Avatars {
		avatars[id] = avatar
	}
	return avatars
}

// restorePayload is the full state snapshot unicast to a reconnecting player
// so it can resume mid-round without replaying history.
func restorePayload(r *Room, playerID string) map[string]any {
	return map[string]any{
		"room_code":    r.Code,
		"player_id":    playerID,
		"phase":        r.Phase,
		"round":        r.Round,
		"round_count":  r.RoundCount,
		"word":         r.Word,
		"scores":       scoresPayload(r),
		"submissions":  submissionsPayload(r),
		"avatars":      avatarsPayload(r),
		"custom_words": append([]string(nil), r.CustomWords...),
	}
}
