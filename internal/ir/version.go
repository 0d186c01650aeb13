package ir

// HashVersion suffixes every identity domain. Bump it when the canonical
// form of models or queries changes so old and new hashes never collide.
const HashVersion = "v1"

// EngineVersion is the aigo release reported by aigo --version.
const EngineVersion = "0.1.0"
