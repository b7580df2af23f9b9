// turbosum is a small checksum command, digesting stdin or files with
// TurboSHAKE256, KT128, or KT256 and printing the result as hex.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/codahale/turbosponge/hazmat/kt128"
	"github.com/codahale/turbosponge/hazmat/kt256"
	"github.com/codahale/turbosponge/hazmat/turboshake"
)

var (
	algo   string
	length int
)

func init() {
	flag.StringVar(&algo, "algo", "turboshake256", "digest algorithm: turboshake256, kt128, or kt256")
	flag.IntVar(&length, "length", 32, "output length in bytes")
}

func newHasher() (io.ReadWriter, error) {
	switch algo {
	case "turboshake256":
		h := turboshake.New256()
		return &h, nil
	case "kt128":
		return kt128.New(), nil
	case "kt256":
		return kt256.New(), nil
	default:
		return nil, fmt.Errorf("turbosum: unknown algorithm %q", algo)
	}
}

func sumReader(r io.Reader) (string, error) {
	h, err := newHasher()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	digest := make([]byte, length)
	if _, err := h.Read(digest); err != nil {
		return "", err
	}
	return hex.EncodeToString(digest), nil
}

func sumFile(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return sumReader(f)
}

func main() {
	flag.Parse()

	if flag.NArg() == 0 {
		checksum, err := sumReader(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "turbosum: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(checksum)
		return
	}

	exit := 0
	for _, filename := range flag.Args() {
		checksum, err := sumFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "turbosum: %s: %v\n", filename, err)
			exit = 1
			continue
		}
		fmt.Printf("%s(%s) = %s\n", algo, filename, checksum)
	}
	os.Exit(exit)
}
