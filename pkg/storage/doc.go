// Package storage writes the scraper's output tree.
//
// Every folder and file name passes through SanitizeName, which strips the
// characters <>:"/\|?* so that post titles and attachment names can be used
// directly. Files are written to a temporary name and renamed into place.
//
// Usage:
//
//	manager, err := storage.NewManager("downloads")
//	if err != nil {
//	    return err
//	}
//
//	creatorDir, err := manager.CreateFolder("Jane Doe", "")
//	postDir, err := manager.CreateFolder("42 - art - Hello - 2023-05-01", creatorDir)
//	_, err = manager.WriteFile("post.html", postDir, body)
package storage
