package util

import (
	"fmt"
	"io/ioutil"
	"os"
)

// ReadSource reads source code from the path named by opt.Src. spec.md's CLI
// contract always supplies an input path, so unlike the teacher's ReadSource
// there is no stdin fallback to race against a timeout.
func ReadSource(opt Options) (string, error) {
	b, err := ioutil.ReadFile(opt.Src)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", opt.Src, err)
	}
	return string(b), nil
}

// WriteOutput writes text to the path named by opt.Out, creating or
// truncating the file. The compiler runs single-threaded (spec.md §5), so
// unlike the teacher's channel-based Writer/ListenWrite pair this is a
// direct, synchronous write.
func WriteOutput(opt Options, text string) error {
	f, err := os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", opt.Out, err)
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("writing %s: %w", opt.Out, err)
	}
	return nil
}
