package config

import "fmt"

type Collection struct {
	Name  string
	Title string
}

// Collections is the closed set of collections, in the order "all" scrapes
// them.
var Collections = []Collection{
	{Name: "ot", Title: "Old Testament"},
	{Name: "nt", Title: "New Testament"},
	{Name: "bofm", Title: "Book of Mormon"},
	{Name: "dc", Title: "Doctrine and Covenants"},
	{Name: "pgp", Title: "Pearl of Great Price"},
}

func LookupCollection(name string) (Collection, error) {
	for _, c := range Collections {
		if c.Name == name {
			return c, nil
		}
	}
	return Collection{}, fmt.Errorf("unknown collection %q", name)
}
