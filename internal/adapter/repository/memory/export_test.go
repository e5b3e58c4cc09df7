package memory

// OutboxLen reports how many events the store still holds.
func OutboxLen(s *Store) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.outbox)
}
