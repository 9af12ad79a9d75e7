// Package scraper drives a complete Patreon download run.
//
// A run is strictly sequential: one login, one campaign listing, then for each
// campaign a paginated fetch of its posts followed by saving every post the
// account is allowed to view.
//
// Each saved post gets its own folder:
//
//	<output>/<creator>/<post id> - <tags> - <title> - <date>/
//	    post.html          prettified post body
//	    <attachment name>  one file per attachment
//	    <id> - <title>.jpg cover image, when the post has one
//	    post.json          optional metadata sidecar
//
// Failures are contained at the smallest possible scope. A failed download is
// counted and the post is still saved; a post that cannot be parsed or written
// is counted and the campaign continues; a campaign whose content cannot be
// fetched is counted and the next campaign starts. Only login and campaign
// listing errors end the run early, and they are reported through Summary.Err
// rather than returned.
//
// Usage:
//
//	cfg, err := config.Load("", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, err := scraper.New(cfg, logger.GetLogger())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary := s.Run(ctx, cfg.Patreon.Email, cfg.Patreon.Password)
//	fmt.Println(summary)
package scraper
