package client

import (
	"math/rand"

	"emotechat/protocol"
)

var adjectives = []string{
	"Swift", "Clever", "Bold", "Bright", "Happy", "Silly", "Sneaky", "Cool", "Wild", "Zesty",
	"Mighty", "Sleek", "Fuzzy", "Playful", "Groovy", "Epic", "Tiny", "Giant", "Sly", "Jolly",
	"Mystical", "Radiant", "Cosmic", "Quantum", "Stellar", "Neon", "Primal", "Joyful", "Serene", "Vivid",
	"Golden", "Azure", "Sunny", "Lunar", "Solar", "Arctic", "Frosty", "Silent", "Cheerful", "Noble",
}

var nouns = []string{
	"Phoenix", "Dragon", "Griffin", "Basilisk", "Kraken", "Leviathan", "Sphinx", "Chimera", "Hydra", "Minotaur",
	"Pegasus", "Harpy", "Wyvern", "Drake", "Unicorn", "Specter", "Golem", "Gargoyle", "Kitsune", "Sprite",
	"Nymph", "Satyr", "Centaur", "Siren", "Pixie", "Fairy", "Imp", "Titan", "Cyclops", "Manticore",
}

// DefaultSkins 客户端自带的皮肤
var DefaultSkins = []string{"mario", "luigi", "repanzel", "rock"}

// RandomName 形容词 + 名词，最长不超过服务端的名字上限
func RandomName(rng *rand.Rand) string {
	name := adjectives[rng.Intn(len(adjectives))] + " " + nouns[rng.Intn(len(nouns))]
	return protocol.Truncate(name, protocol.MaxNameLen)
}

// RandomSkin 从 skins 中随机挑一个；为空时返回默认皮肤
func RandomSkin(rng *rand.Rand, skins []string) string {
	if len(skins) == 0 {
		return protocol.DefaultSkin
	}
	return skins[rng.Intn(len(skins))]
}
