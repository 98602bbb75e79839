//go:build unix

package elf

// ParseFile reads and decodes the elf file at path.
func ParseFile(path string, options ...BufferOption) (*File, error) {
	buffer, err := NewBuffer(0, options...)
	if err != nil {
		return nil, err
	}

	err = buffer.FillFromPath(path)
	if err != nil {
		return nil, err
	}

	return defaultDecoder.Parse(buffer)
}
