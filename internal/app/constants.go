package app

// MinPlayersToStartGame defines the minimum number of occupied seats required
// to start a game when no configuration overrides it.
const MinPlayersToStartGame = 2
