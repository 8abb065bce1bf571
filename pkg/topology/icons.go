package topology

import "strings"

// defaultIcons maps node types to the icon names the frontend's icon map knows.
var defaultIcons = map[string]string{
	"server":          "storage_server",
	"firewall":        "firewall",
	"dns":             "dns",
	"pc":              "laptop",
	"router":          "main_switch",
	"database":        "database",
	"mail":            "mail_server",
	"switch_fiber":    "fiber_switch",
	"switch_ethernet": "ethernet_switch",
	"web":             "webserver",
}

const fallbackIcon = "pc"

// applyDefaultIcons fills in icon data for nodes that lack it. Nodes that
// already carry both an icon name and a symbol keep the user's choice.
func applyDefaultIcons(doc *Document) {
	for i := range doc.Nodes {
		node := &doc.Nodes[i]
		if node.IconName != "" && node.Symbol != "" {
			continue
		}
		if node.Type == "" {
			continue
		}
		iconName, ok := defaultIcons[strings.ToLower(node.Type)]
		if !ok {
			iconName = fallbackIcon
		}
		node.IconName = iconName
		node.Symbol = "image://icons/" + iconName + ".png"
	}
}
