/*
Package studio contains the application model for capturing and re-editing
automation tracks of an articulatory speech synthesizer.

The studio package defines the Model struct, which holds the library of
tracks, the playhead, the parameter selected for editing, the undo history,
and the Recorder, Editor and Player that connect the library to the engine.

The UI does not modify the Model data directly, rather, there are types
Action, Bool and Int which can be used to manipulate the model data in a
controlled way. For example, model.Frames().Reverse() returns an Action to
reverse the current track, which can be executed with
model.Frames().Reverse().Do().

The various Actions and other data manipulation methods are grouped based on
their functionalities. For example, model.Frames() groups the structural
edits of the current track, model.Edit() routes pointer events to the curve
editor and model.Tracks() manages the set of tracks.

Capture runs on a timer of its own; its ticks, like the results of
asynchronous file loads, arrive through the Broker and are applied by
Model.ProcessMsg on the goroutine that owns the Model.
*/
package studio
