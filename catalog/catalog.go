// Package catalog holds the static plant listing shown behind the
// authentication gate. The listing is seed data; it carries no per-user
// state and requires no remote calls.
package catalog

// Plant is a single catalog entry.
type Plant struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

var plants = []Plant{
	{
		ID:          1,
		Name:        "Rose",
		Description: "Classic, fragrant blooms perfect for any garden.",
		Image:       "https://images.pexels.com/photos/56866/garden-rose-red-pink-56866.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		ID:          2,
		Name:        "Lavender",
		Description: "Soothing scent and beautiful purple flowers.",
		Image:       "https://images.pexels.com/photos/46216/lavender-flowers-purple-flowers-46216.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		ID:          3,
		Name:        "Succulent Mix",
		Description: "Low-maintenance plants ideal for busy plant lovers.",
		Image:       "https://images.pexels.com/photos/569966/pexels-photo-569966.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		ID:          4,
		Name:        "Peace Lily",
		Description: "Elegant indoor plant that purifies the air.",
		Image:       "https://images.pexels.com/photos/569966/pexels-photo-569966.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
}

// Listing returns the catalog entries in display order. The returned slice
// is a copy; callers may reorder it freely.
func Listing() []Plant {
	out := make([]Plant, len(plants))
	copy(out, plants)
	return out
}
