package itemlist

// Named is a reference to another record that only carries a display name.
type Named struct {
	Name string `yaml:"name" json:"name"`
}

// ItemData is the payload of an item as delivered by the item source.
// Status and Author are required; Service is optional.
type ItemData struct {
	ID        int    `yaml:"id" json:"id"`
	Number    string `yaml:"number" json:"number"`
	Summary   string `yaml:"summary" json:"summary"`
	IsPrivate bool   `yaml:"isPrivate" json:"isPrivate"`
	Status    *Named `yaml:"status" json:"status"`
	Service   *Named `yaml:"service,omitempty" json:"service,omitempty"`
	Author    *Named `yaml:"author" json:"author"`
	CreatedOn string `yaml:"createdOn" json:"createdOn"`
	UpdatedOn string `yaml:"updatedOn" json:"updatedOn"`
}

// Entity wraps the item payload.
type Entity struct {
	Data *ItemData `yaml:"data" json:"data"`
}

// Item is one domain record owned by the caller. The package never modifies it.
type Item struct {
	Entity Entity `yaml:"entity" json:"entity"`
}

// NewItem builds an Item around data.
func NewItem(data ItemData) Item {
	return Item{Entity: Entity{Data: &data}}
}
