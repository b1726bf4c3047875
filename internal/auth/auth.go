package auth

// Service answers whether a Telegram user may interact with the bot.
// The allow-list is fixed at startup; nothing mutates it afterwards.
type Service struct {
	allowed map[int64]struct{}
}

func New(ids []int64) *Service {
	s := &Service{allowed: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.allowed[id] = struct{}{}
	}
	return s
}

func (s *Service) IsAllowed(userID int64) bool {
	_, ok := s.allowed[userID]
	return ok
}
