package player

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// imageRegistry remembers the visuals already announced per section so a
// replayed or rewound section shows the same set without refetching, and so
// chat answers can cycle through a section's images.
type imageRegistry struct {
	c *gocache.Cache
}

func newImageRegistry() *imageRegistry {
	return &imageRegistry{c: gocache.New(30*time.Minute, 10*time.Minute)}
}

func sectionKey(section int) string {
	return fmt.Sprintf("section:%d", section)
}

func (r *imageRegistry) Preload(section int, urls []string) {
	if len(urls) == 0 {
		return
	}
	r.c.SetDefault(sectionKey(section), append([]string(nil), urls...))
}

func (r *imageRegistry) Section(section int) []string {
	if cached, ok := r.c.Get(sectionKey(section)); ok {
		if urls, ok := cached.([]string); ok {
			return urls
		}
	}
	return nil
}

func (r *imageRegistry) Clear() {
	r.c.Flush()
}
