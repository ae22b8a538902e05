package api

// EngineVersion tags responses and persisted games. Bump when a change
// alters simulation output for identical seeds, since stored games can then
// no longer be replay-verified against the new engine.
const EngineVersion = "1.0.0"
