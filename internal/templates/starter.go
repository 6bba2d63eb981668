package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

const starterHead = `<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>TITLE_TEXT_PH | SITENAME_TEXT_PH</title>
<link rel="canonical" href="SELF_URL_PH">
</head>`

const starterCollectionPre = `<header>
<a href="HOME_URL_PH">SITENAME_TEXT_PH</a>
<nav>PREV_LINK_PH | HOME_LINK_PH | NEXT_LINK_PH</nav>
</header>
<h1>TITLE_TEXT_PH</h1>
<p class="date">DATE_TEXT_PH</p>`

const starterCollectionPost = `<footer>
<nav>PREV_LINK_PH | HOME_LINK_PH | NEXT_LINK_PH</nav>
<p>&copy; YEAR_TEXT_PH <a href="DOMAIN_URL_PH">NAME_DOMAIN_TEXT_PH</a></p>
</footer>`

const starterStandalonePre = `<header>
<a href="HOME_URL_PH">SITENAME_TEXT_PH</a>
</header>`

const starterStandalonePost = `<footer>
<p><a href="DOMAIN_URL_PH">NAME_DOMAIN_TEXT_PH</a></p>
</footer>`

// WriteStarter writes example fragments into the configured template directory.
// Existing files are kept unless force is set.
func WriteStarter(cfg *config.Config, force bool) ([]string, error) {
	t := cfg.Templates
	files := map[string]string{
		t.Head:           starterHead,
		t.CollectionPre:  starterCollectionPre,
		t.CollectionPost: starterCollectionPost,
		t.StandalonePre:  starterStandalonePre,
		t.StandalonePost: starterStandalonePost,
	}

	dir := filepath.Join(cfg.Content.Root, t.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create template dir: %w", err)
	}

	var written []string
	for name, body := range files {
		p := cfg.TemplatePath(name)
		if _, err := os.Stat(p); err == nil && !force {
			continue
		}
		if err := os.WriteFile(p, []byte(body+"\n"), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}
	slices.Sort(written)
	return written, nil
}
