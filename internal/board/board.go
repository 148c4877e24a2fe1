package board

import "strings"

// Size is the number of tiles on the track.
const Size = 40

type Category string

const (
	CategoryCorner   Category = "corner"
	CategoryProperty Category = "property"
	CategoryRail     Category = "rail"
	CategoryUtility  Category = "util"
	CategoryTax      Category = "tax"
	CategoryChance   Category = "chance"
	CategoryChest    Category = "chest"
)

// Deck names a card pile. The wire format uses the same strings.
type Deck string

const (
	DeckChance Deck = "chance"
	DeckChest  Deck = "chest"
)

// ParseDeck maps any server spelling onto a known deck. Everything that is
// not "chance" is treated as the community chest.
func ParseDeck(s string) Deck {
	if strings.EqualFold(strings.TrimSpace(s), string(DeckChance)) {
		return DeckChance
	}
	return DeckChest
}

// Name is the deck as players see it.
func (d Deck) Name() string {
	if d == DeckChance {
		return "Chance"
	}
	return "Mystery"
}

// Label is the kicker shown above a revealed card.
func (d Deck) Label() string {
	if d == DeckChance {
		return "? CHANCE"
	}
	return "? MYSTERY"
}

// DefaultTitle is used when the server reveals a card without a title.
func (d Deck) DefaultTitle() string {
	if d == DeckChance {
		return "Advance to GO"
	}
	return "Bank error in your favor"
}

type Tile struct {
	Name     string
	Category Category
	Band     string // color group, property tiles only
	Icon     string
}

// Tiles is the board, GO at 0, clockwise.
var Tiles = [Size]Tile{
	{Name: "GO", Category: CategoryCorner},
	{Name: "Mediterranean Avenue", Category: CategoryProperty, Band: "#955436", Icon: "🏠"},
	{Name: "Community Chest", Category: CategoryChest, Icon: "🧰"},
	{Name: "Baltic Avenue", Category: CategoryProperty, Band: "#955436", Icon: "🏠"},
	{Name: "Income Tax", Category: CategoryTax, Icon: "💵"},
	{Name: "Reading Railroad", Category: CategoryRail, Icon: "🚂"},
	{Name: "Oriental Avenue", Category: CategoryProperty, Band: "#aae0fa", Icon: "🏢"},
	{Name: "Chance", Category: CategoryChance, Icon: "❓"},
	{Name: "Vermont Avenue", Category: CategoryProperty, Band: "#aae0fa", Icon: "🏢"},
	{Name: "Connecticut Avenue", Category: CategoryProperty, Band: "#aae0fa", Icon: "🏢"},
	{Name: "Jail / Just Visiting", Category: CategoryCorner},
	{Name: "St. Charles Place", Category: CategoryProperty, Band: "#d93a96", Icon: "🏘️"},
	{Name: "Electric Company", Category: CategoryUtility, Icon: "💡"},
	{Name: "States Avenue", Category: CategoryProperty, Band: "#d93a96", Icon: "🏘️"},
	{Name: "Virginia Avenue", Category: CategoryProperty, Band: "#d93a96", Icon: "🏘️"},
	{Name: "Pennsylvania Railroad", Category: CategoryRail, Icon: "🚆"},
	{Name: "St. James Place", Category: CategoryProperty, Band: "#f7941d", Icon: "🏨"},
	{Name: "Community Chest", Category: CategoryChest, Icon: "🧰"},
	{Name: "Tennessee Avenue", Category: CategoryProperty, Band: "#f7941d", Icon: "🏨"},
	{Name: "New York Avenue", Category: CategoryProperty, Band: "#f7941d", Icon: "🏨"},
	{Name: "Free Parking", Category: CategoryCorner},
	{Name: "Kentucky Avenue", Category: CategoryProperty, Band: "#ed1b24", Icon: "🏬"},
	{Name: "Chance", Category: CategoryChance, Icon: "❓"},
	{Name: "Indiana Avenue", Category: CategoryProperty, Band: "#ed1b24", Icon: "🏬"},
	{Name: "Illinois Avenue", Category: CategoryProperty, Band: "#ed1b24", Icon: "🏬"},
	{Name: "B. & O. Railroad", Category: CategoryRail, Icon: "🚄"},
	{Name: "Atlantic Avenue", Category: CategoryProperty, Band: "#fef200", Icon: "🏢"},
	{Name: "Ventnor Avenue", Category: CategoryProperty, Band: "#fef200", Icon: "🏢"},
	{Name: "Water Works", Category: CategoryUtility, Icon: "🚰"},
	{Name: "Marvin Gardens", Category: CategoryProperty, Band: "#fef200", Icon: "🏢"},
	{Name: "Go To Jail", Category: CategoryCorner},
	{Name: "Pacific Avenue", Category: CategoryProperty, Band: "#1fb25a", Icon: "🏢"},
	{Name: "North Carolina Avenue", Category: CategoryProperty, Band: "#1fb25a", Icon: "🏢"},
	{Name: "Community Chest", Category: CategoryChest, Icon: "🧰"},
	{Name: "Pennsylvania Avenue", Category: CategoryProperty, Band: "#1fb25a", Icon: "🏢"},
	{Name: "Short Line", Category: CategoryRail, Icon: "🚃"},
	{Name: "Chance", Category: CategoryChance, Icon: "❓"},
	{Name: "Park Place", Category: CategoryProperty, Band: "#0072bb", Icon: "🏙️"},
	{Name: "Luxury Tax", Category: CategoryTax, Icon: "💎"},
	{Name: "Boardwalk", Category: CategoryProperty, Band: "#0072bb", Icon: "🏙️"},
}

// Normalize folds any integer onto the track.
func Normalize(i int) int {
	return ((i % Size) + Size) % Size
}

// At returns the tile at a normalized index.
func At(i int) Tile {
	return Tiles[Normalize(i)]
}

// DeckAt reports which deck a landing on i draws from, if any.
func DeckAt(i int) (Deck, bool) {
	switch At(i).Category {
	case CategoryChance:
		return DeckChance, true
	case CategoryChest:
		return DeckChest, true
	default:
		return "", false
	}
}

// Purchasable is true for color properties, railroads and utilities.
func Purchasable(i int) bool {
	switch At(i).Category {
	case CategoryProperty, CategoryRail, CategoryUtility:
		return true
	}
	return false
}

var shortNames = strings.NewReplacer(
	"Avenue", "Ave",
	"Railroad", "RR",
	"Pennsylvania", "Penn",
	"Carolina", "Car.",
	"Community Chest", "Chest",
	"Electric Company", "Electric Co.",
	"Water Works", "Water",
)

func ShortName(name string) string {
	return shortNames.Replace(name)
}
